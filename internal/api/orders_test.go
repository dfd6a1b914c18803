package api

import (
	"net/http"
	"testing"

	"supplychain/internal/models"
	"supplychain/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(customer string) gin.H {
	return gin.H{
		"customerName":  customer,
		"customerEmail": "buyer@example.com",
		"items": []gin.H{
			{"name": "Cable", "sku": "CAB-003", "quantity": 2, "price": 12.5},
			{"name": "Mouse", "sku": "MOU-002", "quantity": 1, "price": 30},
		},
		"shippingAddress": "1 Main St",
		"paymentMethod":   "card",
	}
}

func TestOrderCRUD(t *testing.T) {
	s, pub := setupTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/orders", sampleOrder("Acme"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decode(t, w, &order)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.False(t, order.OrderDate.IsZero())
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("55")), order.TotalAmount.String())
	assert.Zero(t, pub.count(), "orders do not signal the inventory topic")

	update := sampleOrder("Acme")
	update["status"] = "delivered"
	update["paymentStatus"] = "paid"
	update["totalAmount"] = 50
	w = doRequest(t, s, http.MethodPut, "/api/orders/"+order.ID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, s, http.MethodGet, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(50)))
	require.Len(t, order.Items, 2)

	w = doRequest(t, s, http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, s, http.MethodGet, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderValidation(t *testing.T) {
	s, _ := setupTestServer(t)

	body := sampleOrder("")
	body["status"] = "lost"
	w := doRequest(t, s, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	msg := errorMessage(t, w)
	assert.Contains(t, msg, "customerName is required")
	assert.Contains(t, msg, "status must be one of")

	body = sampleOrder("Acme")
	body["items"] = []gin.H{{"name": "Cable", "quantity": 0}}
	w = doRequest(t, s, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "items[0].quantity must be at least 1")
}

func TestListOrdersFilters(t *testing.T) {
	s, _ := setupTestServer(t)
	for _, customer := range []string{"Acme", "Globex", "Acme"} {
		w := doRequest(t, s, http.MethodPost, "/api/orders", sampleOrder(customer))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	shipped := sampleOrder("Initech")
	shipped["status"] = "shipped"
	w := doRequest(t, s, http.MethodPost, "/api/orders", shipped)
	require.Equal(t, http.StatusCreated, w.Code)

	var list []models.Order
	w = doRequest(t, s, http.MethodGet, "/api/orders", nil)
	decode(t, w, &list)
	assert.Len(t, list, 4)

	w = doRequest(t, s, http.MethodGet, "/api/orders?customer=Acme", nil)
	decode(t, w, &list)
	assert.Len(t, list, 2)

	w = doRequest(t, s, http.MethodGet, "/api/orders?status=shipped", nil)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Initech", list[0].CustomerName)

	w = doRequest(t, s, http.MethodGet, "/api/orders?search=glob&status=all", nil)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Globex", list[0].CustomerName)

	w = doRequest(t, s, http.MethodGet, "/api/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "unknown order status")
}

func TestDashboardSummaryEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	paid := sampleOrder("Acme")
	paid["paymentStatus"] = "paid"
	paid["status"] = "delivered"
	for _, body := range []gin.H{paid, sampleOrder("Globex")} {
		w := doRequest(t, s, http.MethodPost, "/api/orders", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, s, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary store.DashboardSummary
	decode(t, w, &summary)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 1, summary.DeliveredOrders)
	assert.Equal(t, 1, summary.PendingOrders)
	assert.Equal(t, 1, summary.PaidOrders)
	assert.Equal(t, 1, summary.UnpaidOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(110)), summary.TotalRevenue.String())
}

func TestCustomersAndSuppliers(t *testing.T) {
	s, _ := setupTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/customers", gin.H{"name": "Ada", "email": "not-an-email", "phone": "555"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email address", errorMessage(t, w))

	w = doRequest(t, s, http.MethodPost, "/api/customers", gin.H{"name": "Ada", "email": "ada@example.com", "phone": "555"})
	require.Equal(t, http.StatusCreated, w.Code)
	var customer models.Customer
	decode(t, w, &customer)

	w = doRequest(t, s, http.MethodPut, "/api/customers/"+customer.ID, gin.H{"name": "Ada L", "email": "ada@example.com", "phone": "555"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, s, http.MethodGet, "/api/customers", nil)
	var customers []models.Customer
	decode(t, w, &customers)
	require.Len(t, customers, 1)
	assert.Equal(t, "Ada L", customers[0].Name)

	w = doRequest(t, s, http.MethodPost, "/api/suppliers", gin.H{"name": "Ann", "email": "ann@techcorp.com", "phone": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "company is required", errorMessage(t, w))

	w = doRequest(t, s, http.MethodPost, "/api/suppliers", gin.H{"name": "Ann", "email": "ann@techcorp.com", "phone": "1", "company": "TechCorp"})
	require.Equal(t, http.StatusCreated, w.Code)
	var supplier models.Supplier
	decode(t, w, &supplier)

	w = doRequest(t, s, http.MethodGet, "/api/suppliers/"+supplier.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, s, http.MethodDelete, "/api/suppliers/"+supplier.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, s, http.MethodGet, "/api/suppliers/"+supplier.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, s, http.MethodDelete, "/api/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
