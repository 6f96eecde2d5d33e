// Package llm drafts form schemas with a language model. Providers are
// interchangeable behind Client; the Generator turns whatever text they
// return into a cleaned schema.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
)

// Client is a chat-style completion provider.
type Client interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const (
	temperature = 0.1
	maxTokens   = 3000

	// maxReplyBody bounds how much of a provider reply is read.
	maxReplyBody = 4 << 20
)

var (
	// ErrNotConfigured is returned when the provider lacks a key or model.
	ErrNotConfigured = errors.New("llm: provider is not configured")
	// ErrReplyTooLarge is returned when a reply body exceeds maxReplyBody.
	ErrReplyTooLarge = fmt.Errorf("llm: reply exceeds %d bytes", maxReplyBody)
)

// APIError is a non-2xx reply from a provider.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.Status, e.Message)
}

// readReply reads a provider reply body, refusing one over maxReplyBody.
func readReply(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxReplyBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxReplyBody {
		return nil, ErrReplyTooLarge
	}
	return data, nil
}

// NewClient builds the client for cfg, filling the endpoint and model from
// the provider's preset when they are empty. hc may be nil.
func NewClient(cfg config.ProviderConfig, hc *http.Client) (Client, error) {
	p, ok := PresetFor(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = p.Endpoint
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("%w: %s needs an API key and a model", ErrNotConfigured, cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		return NewOpenAIClient(cfg, hc), nil
	case config.ProviderHuggingFace:
		return NewHuggingFaceClient(cfg, hc), nil
	case config.ProviderGemini:
		return NewGeminiClient(context.Background(), cfg, hc)
	case config.ProviderMock:
		return NewMockClient(), nil
	}
	return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
}

// newRetryingClient retries 429 and 5xx a few times. Provider calls are
// single requests, so the default policy fits.
func newRetryingClient(provider string, timeout time.Duration, hc *http.Client) *retryablehttp.Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	log := logging.Get(logging.CategoryLLM)
	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Warn("retrying provider call", zap.String("provider", provider), zap.Int("attempt", attempt))
		}
	}
	return rc
}
