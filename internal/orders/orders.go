// Package orders holds the order list filter and the defaults applied to
// orders before they are stored.
package orders

import (
	"fmt"
	"strings"
	"time"

	"supplychain/internal/models"
)

// All disables the status or customer filter
const All = "all"

// Criteria is the filter predicate of the orders view
type Criteria struct {
	SearchTerm string `form:"search" json:"searchTerm"`
	Status     string `form:"status" json:"status"`
	Customer   string `form:"customer" json:"customer"`
}

// ValidStatus reports whether v is All, empty or a known order status
func ValidStatus(v string) bool {
	if isAll(v) {
		return true
	}
	for _, s := range models.OrderStatuses {
		if string(s) == v {
			return true
		}
	}
	return false
}

// Validate rejects an unknown status filter
func (c Criteria) Validate() error {
	if !ValidStatus(c.Status) {
		return fmt.Errorf("unknown order status %q", c.Status)
	}
	return nil
}

// Match reports whether an order satisfies all filters. The search term is
// matched case-insensitively against the id, customer name and customer email.
func (c Criteria) Match(o models.Order) bool {
	if c.SearchTerm != "" {
		term := strings.ToLower(c.SearchTerm)
		if !strings.Contains(strings.ToLower(o.ID), term) &&
			!strings.Contains(strings.ToLower(o.CustomerName), term) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), term) {
			return false
		}
	}
	if !isAll(c.Status) && string(o.Status) != c.Status {
		return false
	}
	if !isAll(c.Customer) && o.CustomerName != c.Customer {
		return false
	}
	return true
}

// Filter returns the matching orders in their original order, as a new slice
func Filter(list []models.Order, c Criteria) []models.Order {
	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		if c.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// Customers returns the distinct customer names in first-seen order
func Customers(list []models.Order) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, o := range list {
		if o.CustomerName == "" || seen[o.CustomerName] {
			continue
		}
		seen[o.CustomerName] = true
		out = append(out, o.CustomerName)
	}
	return out
}

// ApplyDefaults fills the fields a new or replaced order may omit: status and
// payment status start as pending, the order date is the current day, and a
// zero total is computed from the lines.
func ApplyDefaults(o *models.Order, now time.Time) {
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentStatusPending
	}
	if o.OrderDate.IsZero() {
		y, m, d := now.Date()
		o.OrderDate = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	if o.TotalAmount.IsZero() && len(o.Items) > 0 {
		o.TotalAmount = o.Items.Total()
	}
}

func isAll(v string) bool {
	return v == "" || v == All
}
