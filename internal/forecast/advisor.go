// Package forecast suggests reorder quantities for items that need attention.
package forecast

import (
	"context"
	"fmt"
	"strings"

	"supplychain/internal/inventory"
	"supplychain/internal/models"

	"github.com/shopspring/decimal"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Suggestion is the reorder advice for one item
type Suggestion struct {
	ItemID        string                `json:"itemId"`
	Name          string                `json:"name"`
	SKU           string                `json:"sku"`
	Supplier      string                `json:"supplier"`
	Status        inventory.StockStatus `json:"status"`
	Quantity      int                   `json:"quantity"`
	MinQuantity   int                   `json:"minQuantity"`
	SuggestedQty  int                   `json:"suggestedQuantity"`
	EstimatedCost decimal.Decimal       `json:"estimatedCost"`
}

// Advice is the full restock plan
type Advice struct {
	Suggestions []Suggestion    `json:"suggestions"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	Note        string          `json:"note,omitempty"`
}

// Advisor builds restock plans, optionally with a model-written note
type Advisor struct {
	model  llms.Model
	logger *zap.Logger
}

// NewAdvisor creates an advisor. model may be nil.
func NewAdvisor(model llms.Model, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{model: model, logger: logger}
}

// SuggestedQuantity is how many units bring an item back above its minimum
// with headroom. It is at least one.
func SuggestedQuantity(item models.Item) int {
	q := item.Quantity
	if q < 0 {
		q = 0
	}
	return max(item.MinQuantity*2-q, item.MinQuantity-q+1, 1)
}

// Advise returns a suggestion for every out-of-stock or low-stock item, in
// input order. A model failure is logged and the numeric plan is still returned.
func (a *Advisor) Advise(ctx context.Context, items []models.Item) (*Advice, error) {
	advice := &Advice{Suggestions: []Suggestion{}, TotalCost: decimal.Zero}

	for _, item := range inventory.Alerts(items) {
		qty := SuggestedQuantity(item)
		cost := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		advice.Suggestions = append(advice.Suggestions, Suggestion{
			ItemID:        item.ID,
			Name:          item.Name,
			SKU:           item.SKU,
			Supplier:      item.Supplier,
			Status:        inventory.Classify(item),
			Quantity:      item.Quantity,
			MinQuantity:   item.MinQuantity,
			SuggestedQty:  qty,
			EstimatedCost: cost,
		})
		advice.TotalCost = advice.TotalCost.Add(cost)
	}

	if a.model == nil || len(advice.Suggestions) == 0 {
		return advice, nil
	}

	note, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt(advice),
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(300),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.Warn("failed to generate purchasing note", zap.Error(err))
		return advice, nil
	}
	advice.Note = strings.TrimSpace(note)
	return advice, nil
}

func prompt(advice *Advice) string {
	var b strings.Builder
	b.WriteString("You are a purchasing assistant for a warehouse. ")
	b.WriteString("Write a short purchasing note (at most five sentences) grouping these reorders by supplier ")
	b.WriteString("and pointing out which ones are most urgent.\n\n")
	for _, s := range advice.Suggestions {
		fmt.Fprintf(&b, "- %s (SKU %s, supplier %s): %s, %d on hand, minimum %d, reorder %d, cost %s\n",
			s.Name, s.SKU, orNone(s.Supplier), s.Status, s.Quantity, s.MinQuantity, s.SuggestedQty, s.EstimatedCost.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal estimated cost: %s\n", advice.TotalCost.StringFixed(2))
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
