package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider selects which chat-completion backend to use.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Client is satisfied by every provider in this package.
type Client interface {
	GenerateSQL(ctx context.Context, question, schema string) (string, error)
	Chat(ctx context.Context, prompt string) (string, error)
}

// New builds a client for the configured provider.
func New(provider, endpoint, model, apiKey string, logger *slog.Logger) (Client, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(endpoint, model, apiKey, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(model, apiKey, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
