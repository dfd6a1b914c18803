package forecast

import (
	"fmt"

	"supplychain/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel creates the language model behind purchasing notes. It returns a nil
// model when the advisor is disabled, which leaves advice purely numeric.
func NewModel(cfg config.AdvisorConfig) (llms.Model, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("advisor enabled but OPENAI_API_KEY is not set")
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return llm, nil
}
