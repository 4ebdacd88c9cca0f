package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ragdocs/internal/domain"
	"ragdocs/internal/logger"
	"ragdocs/internal/openaicompat"
)

// DefaultModel is used when no embedding model is configured.
const DefaultModel = "text-embedding-3-small"

var _ domain.Embedder = (*Client)(nil)

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	transport *openaicompat.Transport
	model     string

	mu        sync.Mutex
	dimension int
}

// Config configures the embeddings client.
type Config struct {
	Transport openaicompat.Config
	Model     string
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	tr, err := openaicompat.NewTransport(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	logger.Debug("embeddings: %s, model %s", tr.BaseURL(), cfg.Model)
	return &Client{transport: tr, model: cfg.Model}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Dimension returns the length of the vectors seen so far, 0 before the first call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: embedding input is empty", domain.ErrInvalidInput)
	}
	body := struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model}

	payload, err := c.transport.PostJSON(ctx, "embeddings", body)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	v, err := openaicompat.ParseEmbedding(payload)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension == 0 {
		c.dimension = len(v)
	} else if c.dimension != len(v) {
		return nil, fmt.Errorf("%w: model %s returned %d values, earlier calls returned %d", domain.ErrDimensionMismatch, c.model, len(v), c.dimension)
	}
	return v, nil
}
