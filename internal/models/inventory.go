package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, the way the dashboard sends them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item represents a stocked product held by the item store.
// The stock status is never stored here; it is derived from Quantity and
// MinQuantity every time it is needed.
type Item struct {
	ID          string          `json:"id" gorm:"primary_key"`
	Name        string          `json:"name" binding:"required,max=100"`
	SKU         string          `json:"sku" gorm:"index" binding:"required"`
	Category    string          `json:"category" gorm:"index"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	MinQuantity int             `json:"minQuantity" binding:"min=0"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)" binding:"min=0"`
	Supplier    string          `json:"supplier"`
	Location    string          `json:"location"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName pins the table name regardless of gorm's pluralization rules
func (Item) TableName() string {
	return "items"
}

// StockValue is the on-hand value of the item (quantity x unit price)
func (i Item) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StockAdjustment is a relative change to an item's on-hand quantity.
type StockAdjustment struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}
