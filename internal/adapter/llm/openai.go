package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat-completion endpoint
// (OpenAI itself, vLLM, Ollama, LM Studio).
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAIClient(endpoint, model, apiKey string, logger *slog.Logger) (*OpenAIClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = strings.TrimSuffix(endpoint, "/")
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}, nil
}

func (c *OpenAIClient) GenerateSQL(ctx context.Context, question, schema string) (string, error) {
	out, err := c.complete(ctx, sqlSystemPrompt, sqlPrompt(question, schema))
	if err != nil {
		return "", err
	}
	return StripSQLFences(out), nil
}

func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, chatSystemPrompt, prompt)
}

func (c *OpenAIClient) complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}

	c.logger.Debug("llm completion",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
