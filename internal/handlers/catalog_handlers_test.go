package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func (env *testEnv) createCategory(token, name string) uint {
	env.T.Helper()
	rec := env.doJSON(http.MethodPost, "/api/v1/categories", map[string]string{"name": name}, token)
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return uint(decode(env.T, rec)["id"].(float64))
}

func (env *testEnv) createProduct(token, name, category string) uint {
	env.T.Helper()
	rec := env.doJSON(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          name,
		"price":         499.99,
		"colors":        []string{"Black", "Gold"},
		"tags":          []string{"new"},
		"category_name": category,
	}, token)
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return uint(decode(env.T, rec)["id"].(float64))
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.register("user@example.com")
	userToken, _ := env.login("user@example.com", "password123")

	// unauthenticated
	rec := env.doJSON(http.MethodPost, "/api/v1/categories", map[string]string{"name": "Phones"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// authenticated but not Admin
	rec = env.doJSON(http.MethodPost, "/api/v1/categories", map[string]string{"name": "Phones"}, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", decode(t, rec)["code"])

	rec = env.doJSON(http.MethodDelete, "/api/v1/products/1", nil, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()

	id := env.createCategory(admin, "Phones")

	rec := env.doJSON(http.MethodPost, "/api/v1/categories", map[string]string{"name": "phones"}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "DUPLICATE_NAME", decode(t, rec)["code"])

	rec = env.doJSON(http.MethodPatch, fmt.Sprintf("/api/v1/categories/%d", id), map[string]string{"name": "Smartphones"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Smartphones", decode(t, rec)["name"])

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/categories/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Smartphones", body["name"])
	require.EqualValues(t, 0, body["productCount"])

	rec = env.doJSON(http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["categories"], 1)

	rec = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", id), nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/categories/%d", id), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.createCategory(admin, "Phones")

	id := env.createProduct(admin, "iPhone 16", "Phones")

	rec := env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "iPhone 16", body["name"])
	require.Equal(t, "Phones", body["category"])
	require.Equal(t, []any{"Black", "Gold"}, body["colors"])
	require.Equal(t, "Test User", body["uploader"])

	rec = env.doJSON(http.MethodPatch, fmt.Sprintf("/api/v1/products/%d", id), map[string]any{
		"price": 399.99,
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 399.99, decode(t, rec)["price"])

	rec = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.createCategory(admin, "Phones")

	// color outside the allowed palette
	rec := env.doJSON(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "iPhone 16",
		"price":         499.99,
		"colors":        []string{"Magenta"},
		"category_name": "Phones",
	}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", decode(t, rec)["code"])

	// missing colors
	rec = env.doJSON(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "iPhone 16",
		"price":         499.99,
		"category_name": "Phones",
	}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown category
	rec = env.doJSON(http.MethodPost, "/api/v1/products", map[string]any{
		"name":          "ThinkPad X1",
		"price":         499.99,
		"colors":        []string{"Black"},
		"category_name": "Laptops",
	}, admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductListPagination(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.createCategory(admin, "Phones")
	for i := 0; i < 5; i++ {
		env.createProduct(admin, fmt.Sprintf("Phone %d", i), "Phones")
	}

	rec := env.doJSON(http.MethodGet, "/api/v1/products?page=2&size=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Len(t, body["data"], 2)

	meta := body["meta"].(map[string]any)
	require.EqualValues(t, 5, meta["total"])
	require.EqualValues(t, 2, meta["page"])
	require.EqualValues(t, 3, meta["total_pages"])
	require.Equal(t, true, meta["has_prev"])
	require.Equal(t, true, meta["has_next"])
}

func TestProductsByCategoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.createCategory(admin, "Phones")
	env.createCategory(admin, "Laptops")
	env.createProduct(admin, "iPhone 16", "Phones")
	env.createProduct(admin, "MacBook Air", "Laptops")

	rec := env.doJSON(http.MethodGet, "/api/v1/products/category/Phones", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode(t, rec)["products"].([]any)
	require.Len(t, products, 1)
	require.Equal(t, "iPhone 16", products[0].(map[string]any)["name"])

	rec = env.doJSON(http.MethodGet, "/api/v1/products/category/Tablets", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpointFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken()
	env.createCategory(admin, "Phones")
	env.createProduct(admin, "iPhone 16", "Phones")
	env.createProduct(admin, "Pixel 10", "Phones")

	rec := env.doJSON(http.MethodGet, "/api/v1/search?q=iPhone", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.EqualValues(t, 1, body["total"])
	products := body["products"].([]any)
	require.Equal(t, "iPhone 16", products[0].(map[string]any)["name"])

	rec = env.doJSON(http.MethodGet, "/api/v1/search", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
