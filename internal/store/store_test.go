package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplychain/internal/config"
	"supplychain/internal/database"
	"supplychain/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return New(db, "sqlite3")
}

func newItem(name string, quantity, min int) *models.Item {
	return &models.Item{
		Name:        name,
		SKU:         name + "-SKU",
		Category:    "Electronics",
		Quantity:    quantity,
		MinQuantity: min,
		Price:       decimal.RequireFromString("9.99"),
	}
}

func TestItemLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := newItem("Cable", 5, 10)
	item.ID = "client-chosen"
	require.NoError(t, s.Items.Create(ctx, item))
	assert.NotEqual(t, "client-chosen", item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := s.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cable", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))

	update := newItem("Cable v2", 50, 10)
	require.NoError(t, s.Items.Update(ctx, item.ID, update))
	assert.Equal(t, item.ID, update.ID)

	got, err = s.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cable v2", got.Name)
	assert.Equal(t, 50, got.Quantity)
	assert.WithinDuration(t, item.CreatedAt, got.CreatedAt, time.Second)

	list, err := s.Items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Items.Delete(ctx, item.ID))
	_, err = s.Items.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Items.Delete(ctx, item.ID), ErrNotFound)
}

func TestItemUpdateMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.Items.Update(context.Background(), "nope", newItem("x", 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemListEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	list, err := s.Items.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestLowStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, it := range []*models.Item{newItem("a", 0, 5), newItem("b", 5, 5), newItem("c", 20, 5)} {
		require.NoError(t, s.Items.Create(ctx, it))
	}

	low, err := s.Items.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "a", low[0].Name)
	assert.Equal(t, "b", low[1].Name)
}

func TestAdjust(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item := newItem("Lamp", 8, 8)
	require.NoError(t, s.Items.Create(ctx, item))

	adjusted, err := s.Items.Adjust(ctx, item.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 5, adjusted.Quantity)

	_, err = s.Items.Adjust(ctx, item.ID, -6)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	got, err := s.Items.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	_, err = s.Items.Adjust(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	order := &models.Order{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: models.OrderLines{
			{Name: "Cable", SKU: "CAB-003", Quantity: 2, Price: decimal.RequireFromString("12.99")},
		},
		TotalAmount:   decimal.RequireFromString("25.98"),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		OrderDate:     time.Now().UTC().Truncate(24 * time.Hour),
	}
	require.NoError(t, s.Orders.Create(ctx, order))

	got, err := s.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "CAB-003", got.Items[0].SKU)
	assert.Equal(t, 2, got.Items[0].Quantity)

	got.Status = models.OrderStatusShipped
	require.NoError(t, s.Orders.Update(ctx, order.ID, got))
	got, err = s.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	require.NoError(t, s.Orders.Delete(ctx, order.ID))
	_, err = s.Orders.Get(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomersAndSuppliers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Customers.Create(ctx, &models.Customer{Name: "Zed", Email: "zed@example.com", Phone: "1"}))
	require.NoError(t, s.Customers.Create(ctx, &models.Customer{Name: "Amy", Email: "amy@example.com", Phone: "2"}))
	customers, err := s.Customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Amy", customers[0].Name)

	sup := &models.Supplier{Name: "Ann", Email: "ann@techcorp.com", Phone: "3", Company: "TechCorp"}
	require.NoError(t, s.Suppliers.Create(ctx, sup))
	sup.Company = "TechCorp Ltd"
	require.NoError(t, s.Suppliers.Update(ctx, sup.ID, sup))
	got, err := s.Suppliers.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "TechCorp Ltd", got.Company)

	require.NoError(t, s.Suppliers.Delete(ctx, sup.ID))
	assert.ErrorIs(t, s.Suppliers.Delete(ctx, sup.ID), ErrNotFound)
	assert.ErrorIs(t, s.Customers.Delete(ctx, "missing"), ErrNotFound)
}

func TestDashboardSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	summary, err := s.Reports.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.IsZero())

	orders := []models.Order{
		{CustomerName: "a", TotalAmount: decimal.NewFromInt(100), Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending},
		{CustomerName: "b", TotalAmount: decimal.NewFromInt(50), Status: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusPaid},
		{CustomerName: "c", TotalAmount: decimal.NewFromInt(25), Status: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusPaid},
	}
	for i := range orders {
		orders[i].OrderDate = time.Now().UTC()
		require.NoError(t, s.Orders.Create(ctx, &orders[i]))
	}

	summary, err = s.Reports.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(175)), summary.TotalRevenue.String())
	assert.Equal(t, 1, summary.PendingOrders)
	assert.Equal(t, 2, summary.DeliveredOrders)
	assert.Equal(t, 2, summary.PaidOrders)
	assert.Equal(t, 1, summary.UnpaidOrders)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
