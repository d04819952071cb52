package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/models"
	"github.com/danabekov/techstore/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

// CategoryWithCount pairs a category with its active-product count for list
// and detail responses.
type CategoryWithCount struct {
	Category     models.Category
	ProductCount int64
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	taken, err := s.Repo.CategoryNameTaken(ctx, name, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.DuplicateName("category")
	}

	category := &models.Category{Name: name, IsActive: true}
	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		if repo.IsDuplicate(err) {
			return nil, apperrors.DuplicateName("category")
		}
		return nil, apperrors.Internal(err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	category, err := s.Repo.CategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, apperrors.Internal(err)
	}

	taken, err := s.Repo.CategoryNameTaken(ctx, name, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.DuplicateName("category")
	}

	category.Name = name
	if err := s.Repo.UpdateCategory(ctx, category); err != nil {
		if repo.IsDuplicate(err) {
			return nil, apperrors.DuplicateName("category")
		}
		return nil, apperrors.Internal(err)
	}
	return category, nil
}

// DeleteCategory soft-deletes the category and cascades to its products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return apperrors.NotFound("category not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *CatalogService) Category(ctx context.Context, id uint) (*CategoryWithCount, error) {
	category, err := s.Repo.CategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, apperrors.Internal(err)
	}
	counts, err := s.Repo.ProductCounts(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &CategoryWithCount{Category: *category, ProductCount: counts[category.ID]}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.Repo.Categories(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	counts, err := s.Repo.ProductCounts(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]CategoryWithCount, len(categories))
	for i, c := range categories {
		out[i] = CategoryWithCount{Category: c, ProductCount: counts[c.ID]}
	}
	return out, nil
}

type CreateProductInput struct {
	Name         string
	Price        float64
	Colors       []string
	Tags         []string
	CategoryName string
	UploaderID   uint
}

type UpdateProductInput struct {
	Name         *string
	Price        *float64
	Colors       []string
	Tags         []string
	CategoryName *string
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	category, err := s.Repo.CategoryByName(ctx, in.CategoryName)
	if err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("category %q not found", in.CategoryName))
		}
		return nil, apperrors.Internal(err)
	}

	taken, err := s.Repo.ProductNameTaken(ctx, in.Name, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.DuplicateName("product")
	}

	product := &models.Product{
		Name:       in.Name,
		Price:      in.Price,
		CategoryID: category.ID,
		UploaderID: in.UploaderID,
		IsActive:   true,
	}
	product.SetColors(in.Colors)
	product.SetTags(in.Tags)

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, apperrors.Internal(err)
	}
	product.Category = *category
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in UpdateProductInput) (*models.Product, error) {
	product, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(err)
	}

	if in.Name != nil {
		taken, err := s.Repo.ProductNameTaken(ctx, *in.Name, id)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if taken {
			return nil, apperrors.DuplicateName("product")
		}
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Colors != nil {
		product.SetColors(in.Colors)
	}
	if in.Tags != nil {
		product.SetTags(in.Tags)
	}
	if in.CategoryName != nil {
		category, err := s.Repo.CategoryByName(ctx, *in.CategoryName)
		if err != nil {
			if errors.Is(err, repo.ErrCategoryNotFound) {
				return nil, apperrors.NotFound(fmt.Sprintf("category %q not found", *in.CategoryName))
			}
			return nil, apperrors.Internal(err)
		}
		product.CategoryID = category.ID
		product.Category = *category
	}

	if err := s.Repo.UpdateProduct(ctx, product); err != nil {
		return nil, apperrors.Internal(err)
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.SoftDeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return apperrors.NotFound("product not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *CatalogService) Product(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(err)
	}
	return product, nil
}

func (s *CatalogService) Products(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.Products(ctx, offset, limit)
	if err != nil {
		return 0, nil, apperrors.Internal(err)
	}
	return total, items, nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryName string) ([]models.Product, error) {
	if _, err := s.Repo.CategoryByName(ctx, categoryName); err != nil {
		if errors.Is(err, repo.ErrCategoryNotFound) {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, apperrors.Internal(err)
	}
	items, err := s.Repo.ProductsByCategory(ctx, categoryName)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.SearchProducts(ctx, query, offset, limit)
	if err != nil {
		return 0, nil, apperrors.Internal(err)
	}
	return total, items, nil
}
