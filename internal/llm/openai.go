package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, Groq).
type OpenAIClient struct {
	provider string
	apiKey   string
	endpoint string
	model    string
	http     *retryablehttp.Client
	log      *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client for cfg.Endpoint, the full completions
// URL.
func NewOpenAIClient(cfg config.ProviderConfig, hc *http.Client) *OpenAIClient {
	return &OpenAIClient{
		provider: cfg.Provider,
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		http:     newRetryingClient(cfg.Provider, cfg.Timeout, hc),
		log:      logging.Get(logging.CategoryLLM),
	}
}

// CompleteWithSystem asks for a JSON object reply.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	c.log.Debug("chat completion", zap.String("provider", c.provider), zap.String("model", c.model),
		zap.Int("system_len", len(systemPrompt)), zap.Int("user_len", len(userPrompt)))

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	data, err := readReply(resp.Body)
	if err != nil {
		return "", err
	}

	var out chatResponse
	decodeErr := json.Unmarshal(data, &out)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if decodeErr == nil && out.Error != nil {
			msg = out.Error.Message
		}
		return "", &APIError{Provider: c.provider, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s returned no completion", c.provider)
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	c.log.Debug("chat completion done", zap.Duration("took", time.Since(start)), zap.Int("response_len", len(text)))
	return text, nil
}
