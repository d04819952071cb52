package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/es"
	"github.com/danabekov/techstore/internal/logging"
	"github.com/danabekov/techstore/internal/middleware"
	"github.com/danabekov/techstore/internal/mykafka"
	"github.com/danabekov/techstore/internal/service"
	"github.com/danabekov/techstore/internal/util"
)

type ProductHandler struct {
	Catalog  *service.CatalogService
	Producer *mykafka.Producer
	ES       *es.Client
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

type createProductRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=200"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Colors       []string `json:"colors" validate:"required,min=1,dive,productcolor"`
	Tags         []string `json:"tags"`
	CategoryName string   `json:"category_name" validate:"required,min=1"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Catalog.CreateProduct(c.Request().Context(), service.CreateProductInput{
		Name:         req.Name,
		Price:        req.Price,
		Colors:       req.Colors,
		Tags:         req.Tags,
		CategoryName: req.CategoryName,
		UploaderID:   middleware.UserID(c),
	})
	if err != nil {
		return err
	}

	if err := h.ES.IndexProduct(c.Request().Context(), product); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index", "error", err)
	}
	h.publish(c, strconv.FormatUint(uint64(product.ID), 10), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusCreated, newProductResponse(product))
}

type updateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Price        *float64 `json:"price" validate:"omitempty,gt=0"`
	Colors       []string `json:"colors" validate:"omitempty,min=1,dive,productcolor"`
	Tags         []string `json:"tags"`
	CategoryName *string  `json:"category_name" validate:"omitempty,min=1"`
}

func (h *ProductHandler) Patch(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid product id")
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Catalog.UpdateProduct(c.Request().Context(), uint(id), service.UpdateProductInput{
		Name:         req.Name,
		Price:        req.Price,
		Colors:       req.Colors,
		Tags:         req.Tags,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		return err
	}

	if err := h.ES.IndexProduct(c.Request().Context(), product); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index", "error", err)
	}
	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid product id")
	}

	if err := h.Catalog.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		return err
	}

	if err := h.ES.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete", "error", err)
	}
	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid product id")
	}

	product, err := h.Catalog.Product(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.Products(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": newProductResponses(items),
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) ByCategory(c echo.Context) error {
	items, err := h.Catalog.ProductsByCategory(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"products": newProductResponses(items)})
}

// Search queries the elasticsearch index when one is configured and falls
// back to the database otherwise.
func (h *ProductHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return apperrors.BadRequest("missing query parameter q")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	if h.ES.Enabled() {
		total, docs, err := h.ES.Search(c.Request().Context(), q, from, limit)
		if err != nil {
			return apperrors.Internal(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"total": total, "products": docs})
	}

	total, items, err := h.Catalog.SearchProducts(c.Request().Context(), q, from, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": newProductResponses(items)})
}
