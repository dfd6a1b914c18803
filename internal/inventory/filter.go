package inventory

import (
	"strings"

	"supplychain/internal/models"
)

// All disables the category or status filter
const All = "all"

// Criteria is the filter predicate of the inventory view.
// Empty Category or Status behave like All.
type Criteria struct {
	SearchTerm string      `form:"search" json:"searchTerm"`
	Category   string      `form:"category" json:"category"`
	Status     StockStatus `form:"status" json:"status"`
}

// IsZero reports whether the criteria match every item
func (c Criteria) IsZero() bool {
	return c.SearchTerm == "" && isAll(c.Category) && isAll(string(c.Status))
}

// Match reports whether a single item satisfies all three filters
func (c Criteria) Match(item models.Item) bool {
	if c.SearchTerm != "" {
		term := strings.ToLower(c.SearchTerm)
		if !containsFold(item.Name, term) &&
			!containsFold(item.SKU, term) &&
			!containsFold(item.Supplier, term) {
			return false
		}
	}
	if !isAll(c.Category) && item.Category != c.Category {
		return false
	}
	if !isAll(string(c.Status)) && Classify(item) != c.Status {
		return false
	}
	return true
}

// Filter returns the items matching c in their original order.
// The input slice is never modified; the result is always a new slice.
func Filter(items []models.Item, c Criteria) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if c.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}

// containsFold expects term already lower-cased
func containsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}
