package inventory

import (
	"sort"

	"supplychain/internal/models"

	"github.com/shopspring/decimal"
)

// recentLimit is how many recently touched items the overview lists
const recentLimit = 5

// CategoryCount is one bar of the items-per-category chart
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary backs the stock overview cards and charts
type Summary struct {
	TotalProducts   int             `json:"totalProducts"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
	InStockCount    int             `json:"inStockCount"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	Categories      []CategoryCount `json:"categories"`
	RecentStock     []models.Item   `json:"recentStock"`
}

// Summarize aggregates an item snapshot. Categories keep first-seen order and
// items without a category are not charted.
func Summarize(items []models.Item) Summary {
	s := Summary{
		TotalProducts:   len(items),
		TotalStockValue: decimal.Zero,
		Categories:      []CategoryCount{},
	}

	index := make(map[string]int)
	for _, item := range items {
		s.TotalStockValue = s.TotalStockValue.Add(item.StockValue())

		switch Classify(item) {
		case StatusOutOfStock:
			s.OutOfStockCount++
		case StatusLowStock:
			s.LowStockCount++
		default:
			s.InStockCount++
		}

		if item.Category == "" {
			continue
		}
		if i, ok := index[item.Category]; ok {
			s.Categories[i].Count++
			continue
		}
		index[item.Category] = len(s.Categories)
		s.Categories = append(s.Categories, CategoryCount{Category: item.Category, Count: 1})
	}

	s.RecentStock = Recent(items, recentLimit)
	return s
}

// Categories returns the distinct non-empty categories in first-seen order
func Categories(items []models.Item) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, item := range items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	return out
}

// Recent returns up to n items ordered by UpdatedAt, newest first.
// Items that were never stamped are skipped.
func Recent(items []models.Item, n int) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if !item.UpdatedAt.IsZero() {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
