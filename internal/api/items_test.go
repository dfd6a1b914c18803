package api

import (
	"net/http"
	"testing"

	"supplychain/internal/forecast"
	"supplychain/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem(name string, quantity, min int) gin.H {
	return gin.H{
		"name":        name,
		"sku":         name + "-001",
		"category":    "Electronics",
		"quantity":    quantity,
		"minQuantity": min,
		"price":       12.99,
		"supplier":    "TechCorp",
		"location":    "Warehouse A",
	}
}

func createItem(t *testing.T, s *Server, body gin.H) ItemResponse {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/api/items", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item ItemResponse
	decode(t, w, &item)
	return item
}

func TestItemCRUD(t *testing.T) {
	s, pub := setupTestServer(t)

	body := sampleItem("Cable", 0, 100)
	body["id"] = "ignored"
	body["status"] = "in_stock"
	created := createItem(t, s, body)
	assert.NotEqual(t, "ignored", created.ID)
	assert.Equal(t, inventory.StatusOutOfStock, created.Status, "status is derived, never taken from input")
	assert.True(t, created.Price.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, 1, pub.count())

	w := doRequest(t, s, http.MethodGet, "/api/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got ItemResponse
	decode(t, w, &got)
	assert.Equal(t, "Cable", got.Name)

	update := sampleItem("Cable", 150, 100)
	w = doRequest(t, s, http.MethodPut, "/api/items/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, inventory.StatusInStock, got.Status)
	assert.Equal(t, 2, pub.count())

	w = doRequest(t, s, http.MethodDelete, "/api/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, pub.count())

	w = doRequest(t, s, http.MethodGet, "/api/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Item not found", errorMessage(t, w))

	w = doRequest(t, s, http.MethodDelete, "/api/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 3, pub.count(), "failed mutations do not publish")
}

func TestCreateItemValidation(t *testing.T) {
	s, pub := setupTestServer(t)

	body := sampleItem("", 5, 1)
	body["quantity"] = -1
	w := doRequest(t, s, http.MethodPost, "/api/items", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	msg := errorMessage(t, w)
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "quantity must be at least 0")

	body = sampleItem("Cable", 5, 1)
	body["price"] = -3
	w = doRequest(t, s, http.MethodPost, "/api/items", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "price must be at least 0")

	w = doRequest(t, s, http.MethodPut, "/api/items/missing", sampleItem("Cable", 5, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Zero(t, pub.count())
}

func TestListItemsFilters(t *testing.T) {
	s, _ := setupTestServer(t)
	createItem(t, s, sampleItem("Cable", 0, 100))
	createItem(t, s, sampleItem("Mouse", 150, 50))
	lamp := sampleItem("Lamp", 8, 8)
	lamp["category"] = "Furniture"
	lamp["supplier"] = "FurniturePlus"
	createItem(t, s, lamp)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter", "", []string{"Cable", "Mouse", "Lamp"}},
		{"search by sku", "?search=mouse-0", []string{"Mouse"}},
		{"search by supplier", "?search=furniture", []string{"Lamp"}},
		{"category", "?category=Electronics", []string{"Cable", "Mouse"}},
		{"status", "?status=low_stock", []string{"Lamp"}},
		{"all", "?category=all&status=all", []string{"Cable", "Mouse", "Lamp"}},
		{"combined", "?category=Electronics&status=in_stock", []string{"Mouse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodGet, "/api/items"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var items []ItemResponse
			decode(t, w, &items)
			names := []string{}
			for _, item := range items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	w := doRequest(t, s, http.MethodGet, "/api/items?status=backordered", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLowStock(t *testing.T) {
	s, _ := setupTestServer(t)
	createItem(t, s, sampleItem("Cable", 0, 100))
	createItem(t, s, sampleItem("Mouse", 150, 50))
	createItem(t, s, sampleItem("Laptop", 15, 20))

	w := doRequest(t, s, http.MethodGet, "/api/items/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []ItemResponse
	decode(t, w, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "Cable", items[0].Name)
	assert.Equal(t, "Laptop", items[1].Name)

	w = doRequest(t, s, http.MethodGet, "/api/items/low-stock?threshold=150", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &items)
	assert.Len(t, items, 3)

	w = doRequest(t, s, http.MethodGet, "/api/items/low-stock?threshold=ten", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustItem(t *testing.T) {
	s, pub := setupTestServer(t)
	item := createItem(t, s, sampleItem("Lamp", 8, 8))

	w := doRequest(t, s, http.MethodPost, "/api/items/"+item.ID+"/adjust", gin.H{"delta": 10, "reason": "delivery"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got ItemResponse
	decode(t, w, &got)
	assert.Equal(t, 18, got.Quantity)
	assert.Equal(t, inventory.StatusInStock, got.Status)
	assert.Equal(t, 2, pub.count())

	w = doRequest(t, s, http.MethodPost, "/api/items/"+item.ID+"/adjust", gin.H{"delta": -19})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "insufficient stock")
	assert.Equal(t, 2, pub.count())

	w = doRequest(t, s, http.MethodPost, "/api/items/"+item.ID+"/adjust", gin.H{"delta": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPost, "/api/items/missing/adjust", gin.H{"delta": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStockOverviewAndCategories(t *testing.T) {
	s, _ := setupTestServer(t)
	createItem(t, s, sampleItem("Cable", 0, 100))
	createItem(t, s, sampleItem("Mouse", 10, 5))
	chair := sampleItem("Chair", 2, 5)
	chair["category"] = "Furniture"
	createItem(t, s, chair)

	w := doRequest(t, s, http.MethodGet, "/api/items/stock-overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary inventory.Summary
	decode(t, w, &summary)
	assert.Equal(t, 3, summary.TotalProducts)
	assert.Equal(t, 1, summary.InStockCount)
	assert.Equal(t, 1, summary.LowStockCount)
	assert.Equal(t, 1, summary.OutOfStockCount)
	assert.True(t, summary.TotalStockValue.Equal(decimal.RequireFromString("155.88")), summary.TotalStockValue.String())

	w = doRequest(t, s, http.MethodGet, "/api/items/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	decode(t, w, &categories)
	assert.Equal(t, []string{"Electronics", "Furniture"}, categories)
}

func TestRestock(t *testing.T) {
	s, _ := setupTestServer(t)
	createItem(t, s, sampleItem("Cable", 0, 100))
	createItem(t, s, sampleItem("Mouse", 150, 50))

	w := doRequest(t, s, http.MethodGet, "/api/items/restock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var advice forecast.Advice
	decode(t, w, &advice)
	require.Len(t, advice.Suggestions, 1)
	assert.Equal(t, "Cable", advice.Suggestions[0].Name)
	assert.Equal(t, 200, advice.Suggestions[0].SuggestedQty)
	assert.True(t, advice.TotalCost.Equal(decimal.RequireFromString("2598")), advice.TotalCost.String())
}
