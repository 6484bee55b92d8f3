package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const anthropicMaxTokens = 1024

// AnthropicClient generates completions through the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

func NewAnthropicClient(model, apiKey string, logger *slog.Logger) (*AnthropicClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

func (c *AnthropicClient) GenerateSQL(ctx context.Context, question, schema string) (string, error) {
	out, err := c.complete(ctx, sqlSystemPrompt, sqlPrompt(question, schema))
	if err != nil {
		return "", err
	}
	return StripSQLFences(out), nil
}

func (c *AnthropicClient) Chat(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, chatSystemPrompt, prompt)
}

func (c *AnthropicClient) complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					{Type: anthropic.MessagesContentTypeText, Text: &prompt},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages request: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("messages request: no text content in response")
	}

	c.logger.Debug("llm completion",
		"model", c.model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return strings.TrimSpace(sb.String()), nil
}
