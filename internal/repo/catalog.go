package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/danabekov/techstore/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

func (r *GormRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB.WithContext(ctx).Create(category).Error
}

// CategoryNameTaken checks active categories case-insensitively, optionally
// excluding one id (for renames).
func (r *GormRepo) CategoryNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *GormRepo) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.DB.WithContext(ctx).Save(category).Error
}

// SoftDeleteCategory deactivates the category and cascades to its products in
// one transaction.
func (r *GormRepo) SoftDeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).
			Where("id = ? AND is_active = ?", id, true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("is_active", false).Error
	})
}

// ProductCounts returns the active-product count per category id.
func (r *GormRepo) ProductCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Count      int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) as count").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) ProductNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").Preload("Uploader").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) Products(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	base := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").Preload("Uploader").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	return total, items, err
}

func (r *GormRepo) ProductsByCategory(ctx context.Context, categoryName string) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Category").Preload("Uploader").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.name = ? AND categories.is_active = ? AND products.is_active = ?",
			categoryName, true, true).
		Order("products.created_at DESC").
		Find(&items).Error
	return items, err
}

// SearchProducts matches name, tags and category name; it is the fallback
// used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + query + "%"
	base := r.DB.WithContext(ctx).Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.is_active = ? AND products.is_active = ?", true, true).
		Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.tags_json) LIKE LOWER(?) OR LOWER(categories.name) LIKE LOWER(?)",
			pattern, pattern, pattern)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	err := base.Session(&gorm.Session{}).
		Preload("Category").Preload("Uploader").
		Order("products.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	return total, items, err
}

func (r *GormRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r *GormRepo) SoftDeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
