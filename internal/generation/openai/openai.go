// Package openai provides a chat-completions client for OpenAI-compatible APIs.
package openai

import (
	"context"
	"fmt"

	"ragdocs/internal/domain"
	"ragdocs/internal/logger"
	"ragdocs/internal/openaicompat"
)

// DefaultModel is used when no chat model is configured.
const DefaultModel = "gpt-4.1-mini"

var _ domain.Generator = (*Client)(nil)

// Config configures the chat client.
type Config struct {
	Transport openaicompat.Config
	Model     string
}

// Client sends conversations to /chat/completions.
type Client struct {
	transport *openaicompat.Transport
	model     string
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// NewClient creates a chat client.
func NewClient(cfg Config) (*Client, error) {
	tr, err := openaicompat.NewTransport(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("openai generator: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	logger.Debug("chat completions: %s, model %s", tr.BaseURL(), cfg.Model)
	return &Client{transport: tr, model: cfg.Model}, nil
}

// Model returns the configured chat model.
func (c *Client) Model() string { return c.model }

// Complete returns the assistant reply to messages.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: no messages", domain.ErrInvalidInput)
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return "", fmt.Errorf("%w: message %d has unknown role %q", domain.ErrInvalidInput, i, m.Role)
		}
	}
	payload, err := c.transport.PostJSON(ctx, "chat/completions", chatRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	return openaicompat.ParseReply(payload)
}
