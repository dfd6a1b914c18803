package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order. Status may be set to any value on update;
// there are no enforced transitions.
type Order struct {
	ID               string          `json:"id" gorm:"primary_key"`
	CustomerName     string          `json:"customerName" gorm:"index" binding:"required"`
	CustomerEmail    string          `json:"customerEmail" binding:"omitempty,email"`
	CustomerPhone    string          `json:"customerPhone"`
	Items            OrderLines      `json:"items" gorm:"type:text" binding:"dive"`
	TotalAmount      decimal.Decimal `json:"totalAmount" gorm:"type:decimal(14,2)" binding:"min=0"`
	Status           OrderStatus     `json:"status" gorm:"index" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	OrderDate        time.Time       `json:"orderDate"`
	ExpectedDelivery *time.Time      `json:"expectedDelivery,omitempty"`
	ShippingAddress  string          `json:"shippingAddress"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus" binding:"omitempty,oneof=paid pending"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TableName pins the table name regardless of gorm's pluralization rules
func (Order) TableName() string {
	return "orders"
}

// OrderLine represents one product line inside an order
type OrderLine struct {
	Name     string          `json:"name" binding:"required"`
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity" binding:"min=1"`
	Price    decimal.Decimal `json:"price" binding:"min=0"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// PaymentStatus represents whether an order has been paid
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)
