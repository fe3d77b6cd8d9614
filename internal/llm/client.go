package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/suykerbuyk/blue/internal/config"
)

// New builds the client for cfg.Provider. It returns an error wrapping
// ErrUnavailable when the API key environment variable is empty.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrUnavailable, cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case "openai", "":
		return NewOpenAI(cfg.BaseURL, cfg.Model, apiKey), nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.Model, apiKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
