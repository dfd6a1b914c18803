// Package inventory derives stock status from item quantities and narrows item
// lists for the dashboard views. Everything here is a pure function over the
// slices it is given.
package inventory

import (
	"fmt"

	"supplychain/internal/models"
)

// StockStatus is the derived availability of an item
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusInStock    StockStatus = "in_stock"
)

// Statuses lists the stock statuses from most to least urgent
var Statuses = []StockStatus{StatusOutOfStock, StatusLowStock, StatusInStock}

// Classify derives the stock status of an item.
// Zero on hand is out of stock even when the threshold is also zero;
// anything at or below the threshold is low.
func Classify(item models.Item) StockStatus {
	switch {
	case item.Quantity <= 0:
		return StatusOutOfStock
	case item.Quantity <= item.MinQuantity:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Valid reports whether s is one of the known statuses
func (s StockStatus) Valid() bool {
	switch s {
	case StatusOutOfStock, StatusLowStock, StatusInStock:
		return true
	}
	return false
}

// NeedsAttention reports whether the status belongs on the low-stock alert view
func (s StockStatus) NeedsAttention() bool {
	return s == StatusOutOfStock || s == StatusLowStock
}

// ParseStatus parses a status filter value. Empty and "all" map to All.
func ParseStatus(v string) (StockStatus, error) {
	if v == "" || v == All {
		return All, nil
	}
	s := StockStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stock status %q", v)
	}
	return s, nil
}

// Alerts keeps the items whose derived status needs attention, in input order
func Alerts(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if Classify(item).NeedsAttention() {
			out = append(out, item)
		}
	}
	return out
}
