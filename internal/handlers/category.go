package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/logging"
	"github.com/danabekov/techstore/internal/mykafka"
	"github.com/danabekov/techstore/internal/service"
)

type CategoryHandler struct {
	Catalog  *service.CatalogService
	Producer *mykafka.Producer
}

func (h *CategoryHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "category_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.Catalog.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	h.publish(c, strconv.FormatUint(uint64(category.ID), 10), map[string]any{
		"type":        "category_created",
		"category_id": category.ID,
		"name":        category.Name,
	})

	return c.JSON(http.StatusCreated, newCategoryResponse(&service.CategoryWithCount{Category: *category}))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid category id")
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.Catalog.UpdateCategory(c.Request().Context(), uint(id), req.Name)
	if err != nil {
		return err
	}

	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":        "category_updated",
		"category_id": category.ID,
		"name":        category.Name,
	})

	return c.JSON(http.StatusOK, newCategoryResponse(&service.CategoryWithCount{Category: *category}))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid category id")
	}

	if err := h.Catalog.DeleteCategory(c.Request().Context(), uint(id)); err != nil {
		return err
	}

	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":        "category_deleted",
		"category_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.BadRequest("invalid category id")
	}

	category, err := h.Catalog.Category(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.Catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]categoryResponse, len(categories))
	for i := range categories {
		out[i] = newCategoryResponse(&categories[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}
