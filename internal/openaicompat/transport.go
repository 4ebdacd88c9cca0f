// Package openaicompat talks to OpenAI-compatible HTTP APIs (OpenAI, LM
// Studio, Ollama, vLLM) and understands the response layouts they use.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no endpoint is configured.
const DefaultBaseURL = "https://api.openai.com"

// ErrMissingAPIKey is returned when no key is configured and anonymous access
// was not requested.
var ErrMissingAPIKey = errors.New("missing API key")

// Config configures a Transport.
type Config struct {
	BaseURL        string
	APIKey         string
	AllowAnonymous bool
	Timeout        time.Duration
	MaxRetries     int
	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64
}

// Transport posts JSON to an OpenAI-compatible API with retries on
// transport errors, 429 and 5xx.
type Transport struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	maxRetries int
	limiter    *rate.Limiter
	sleep      func(context.Context, time.Duration) error
}

// NewTransport validates cfg and returns a transport.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.APIKey == "" && !cfg.AllowAnonymous {
		return nil, ErrMissingAPIKey
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	tr := &Transport{
		baseURL:    ResolveBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: t},
		maxRetries: maxRetries,
		sleep:      sleepContext,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		tr.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return tr, nil
}

// ResolveBaseURL appends /v1 to base unless it already ends with it.
func ResolveBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base
}

// BaseURL returns the resolved API root.
func (t *Transport) BaseURL() string { return t.baseURL }

// PostJSON sends body to path and returns the raw 2xx response payload.
func (t *Transport) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := t.baseURL + "/" + strings.TrimLeft(path, "/")

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			if err := t.sleep(ctx, retryDelay(attempt-1, lastErr)); err != nil {
				return nil, err
			}
		}
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		payload, err := t.do(ctx, url, data)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (t *Transport) do(ctx context.Context, url string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retryAfterError{
			APIError:   &APIError{StatusCode: resp.StatusCode, Body: string(payload), URL: url},
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return payload, nil
}

// retryAfterError carries the server's Retry-After hint next to the APIError
// callers match with errors.As.
type retryAfterError struct {
	*APIError
	retryAfter time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.APIError }

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	if secs > int(maxRetryAfter/time.Second) {
		return maxRetryAfter
	}
	return time.Duration(secs) * time.Second
}

const (
	baseBackoff   = 200 * time.Millisecond
	maxBackoff    = 5 * time.Second
	maxRetryAfter = time.Minute
)

func retryDelay(attempt int, lastErr error) time.Duration {
	var ra *retryAfterError
	if errors.As(lastErr, &ra) && ra.retryAfter > 0 {
		return ra.retryAfter
	}
	if attempt < 0 {
		attempt = 0
	}
	// 200ms << 5 already exceeds the cap
	if attempt > 5 {
		attempt = 5
	}
	d := baseBackoff << attempt
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
