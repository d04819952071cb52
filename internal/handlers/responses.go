package handlers

import (
	"time"

	"github.com/danabekov/techstore/internal/models"
	"github.com/danabekov/techstore/internal/service"
)

type userResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type categoryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"productCount"`
	CreatedAt    time.Time `json:"created_at"`
}

func newCategoryResponse(c *service.CategoryWithCount) categoryResponse {
	return categoryResponse{
		ID:           c.Category.ID,
		Name:         c.Category.Name,
		ProductCount: c.ProductCount,
		CreatedAt:    c.Category.CreatedAt,
	}
}

type ratingResponse struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type productResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Price     float64        `json:"price"`
	Colors    []string       `json:"colors"`
	Tags      []string       `json:"tags"`
	Rating    ratingResponse `json:"rating"`
	Uploader  string         `json:"uploader,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category.Name,
		Price:     p.Price,
		Colors:    p.Colors(),
		Tags:      p.Tags(),
		Rating:    ratingResponse{Rate: p.RatingRate, Count: p.RatingCount},
		Uploader:  p.Uploader.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func newProductResponses(items []models.Product) []productResponse {
	out := make([]productResponse, len(items))
	for i := range items {
		out[i] = newProductResponse(&items[i])
	}
	return out
}
