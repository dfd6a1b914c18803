package forecast

import (
	"context"
	"errors"
	"strings"
	"testing"

	"supplychain/internal/config"
	"supplychain/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel answers every prompt with a canned reply
type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func stock() []models.Item {
	return []models.Item{
		{ID: "1", Name: "Laptop", SKU: "LAP-001", Supplier: "TechCorp", Quantity: 15, MinQuantity: 20, Price: decimal.RequireFromString("1000")},
		{ID: "2", Name: "Mouse", SKU: "MOU-002", Supplier: "TechCorp", Quantity: 150, MinQuantity: 50, Price: decimal.RequireFromString("30")},
		{ID: "3", Name: "Cable", SKU: "CAB-003", Supplier: "CableWorks", Quantity: 0, MinQuantity: 100, Price: decimal.RequireFromString("12.50")},
		{ID: "4", Name: "Screw", SKU: "SCR-009", Quantity: 0, MinQuantity: 0, Price: decimal.RequireFromString("0.10")},
	}
}

func TestSuggestedQuantity(t *testing.T) {
	tests := []struct {
		quantity, min, want int
	}{
		// double the minimum less what is on hand
		{15, 20, 25},
		{0, 100, 200},
		{5, 5, 5},
		{-3, 2, 4},
		// one past the minimum beats doubling a zero minimum
		{0, 0, 1},
		// floor of one when already above the minimum
		{2, 1, 1},
		{150, 50, 1},
	}
	for _, tt := range tests {
		got := SuggestedQuantity(models.Item{Quantity: tt.quantity, MinQuantity: tt.min})
		assert.Equal(t, tt.want, got, "quantity=%d min=%d", tt.quantity, tt.min)
	}
}

func TestAdvise_NumericOnly(t *testing.T) {
	advice, err := NewAdvisor(nil, nil).Advise(context.Background(), stock())
	require.NoError(t, err)

	require.Len(t, advice.Suggestions, 3)
	assert.Equal(t, "1", advice.Suggestions[0].ItemID)
	assert.Equal(t, 25, advice.Suggestions[0].SuggestedQty)
	assert.Equal(t, "3", advice.Suggestions[1].ItemID)
	assert.True(t, advice.Suggestions[1].EstimatedCost.Equal(decimal.RequireFromString("2500")))
	assert.True(t, advice.TotalCost.Equal(decimal.RequireFromString("27500.10")), advice.TotalCost.String())
	assert.Empty(t, advice.Note)
}

func TestAdvise_WithModelNote(t *testing.T) {
	model := &fakeModel{reply: "  Order cables from CableWorks first.  "}
	advice, err := NewAdvisor(model, nil).Advise(context.Background(), stock())
	require.NoError(t, err)

	assert.Equal(t, "Order cables from CableWorks first.", advice.Note)
	require.Len(t, model.prompts, 1)
	assert.True(t, strings.Contains(model.prompts[0], "CAB-003"))
	assert.False(t, strings.Contains(model.prompts[0], "MOU-002"), "in-stock items stay out of the prompt")
}

func TestAdvise_ModelFailureKeepsNumbers(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	advice, err := NewAdvisor(model, nil).Advise(context.Background(), stock())
	require.NoError(t, err)
	assert.Len(t, advice.Suggestions, 3)
	assert.Empty(t, advice.Note)
}

func TestAdvise_NothingToReorderSkipsModel(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	advice, err := NewAdvisor(model, nil).Advise(context.Background(), stock()[1:2])
	require.NoError(t, err)
	assert.Empty(t, advice.Suggestions)
	assert.Empty(t, model.prompts)
}

func TestNewModel(t *testing.T) {
	model, err := NewModel(config.AdvisorConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, model)

	_, err = NewModel(config.AdvisorConfig{Enabled: true, Model: "gpt-4o-mini"})
	assert.Error(t, err)

	model, err = NewModel(config.AdvisorConfig{Enabled: true, Model: "gpt-4o-mini", APIKey: "sk-test", BaseURL: "http://localhost:1/v1"})
	require.NoError(t, err)
	assert.NotNil(t, model)
}
