package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/mathdrill/internal/store"
)

// ErrNoProvider is returned by NewProviderFromEnv when neither
// MATHDRILL_LLM_PROVIDER nor a standard API key variable is set.
var ErrNoProvider = errors.New("no LLM provider configured")

// NewProvider creates a Provider from configuration, wrapped with event
// logging. eventRepo and logger may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, eventRepo, logger), nil
}

// NewProviderFromEnv resolves configuration from MATHDRILL_* variables,
// falling back to DiscoverConfig when no provider was selected explicitly.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	cfg, ok := ResolveConfig()
	if !ok {
		return nil, ErrNoProvider
	}
	return NewProvider(ctx, cfg, eventRepo, logger)
}
