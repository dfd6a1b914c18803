package store

import (
	"context"
	"fmt"

	"supplychain/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ReportStore runs the aggregate queries behind the dashboard. It shares the
// connection pool of the gorm handle.
type ReportStore struct {
	db *sqlx.DB
}

// NewReportStore wraps the gorm connection pool with sqlx
func NewReportStore(db *gorm.DB, driver string) *ReportStore {
	return &ReportStore{db: sqlx.NewDb(db.DB(), driver)}
}

// DashboardSummary counts orders per status and payment status and totals revenue
type DashboardSummary struct {
	TotalOrders      int             `json:"totalOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
	CancelledOrders  int             `json:"cancelledOrders"`
	PaidOrders       int             `json:"paidOrders"`
	UnpaidOrders     int             `json:"unpaidOrders"`
}

type groupTotal struct {
	Key     string          `db:"bucket"`
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

const (
	ordersByStatusQuery = `SELECT status AS bucket, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
FROM orders GROUP BY status`
	ordersByPaymentQuery = `SELECT payment_status AS bucket, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
FROM orders GROUP BY payment_status`
)

// DashboardSummary aggregates every order. Revenue includes every status,
// cancelled orders too, matching what the dashboard has always shown.
func (r *ReportStore) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var byStatus []groupTotal
	if err := r.db.SelectContext(ctx, &byStatus, ordersByStatusQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders by status: %w", err)
	}

	var byPayment []groupTotal
	if err := r.db.SelectContext(ctx, &byPayment, ordersByPaymentQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders by payment status: %w", err)
	}

	summary := &DashboardSummary{TotalRevenue: decimal.Zero}
	for _, g := range byStatus {
		summary.TotalOrders += g.Orders
		summary.TotalRevenue = summary.TotalRevenue.Add(g.Revenue)

		switch models.OrderStatus(g.Key) {
		case models.OrderStatusPending:
			summary.PendingOrders = g.Orders
		case models.OrderStatusProcessing:
			summary.ProcessingOrders = g.Orders
		case models.OrderStatusShipped:
			summary.ShippedOrders = g.Orders
		case models.OrderStatusDelivered:
			summary.DeliveredOrders = g.Orders
		case models.OrderStatusCancelled:
			summary.CancelledOrders = g.Orders
		}
	}

	for _, g := range byPayment {
		switch models.PaymentStatus(g.Key) {
		case models.PaymentStatusPaid:
			summary.PaidOrders = g.Orders
		case models.PaymentStatusPending:
			summary.UnpaidOrders = g.Orders
		}
	}

	return summary, nil
}
