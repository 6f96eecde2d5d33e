package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
)

// HuggingFaceClient calls the text-generation inference API. The model has
// no chat roles, so both prompts are folded into one input.
type HuggingFaceClient struct {
	apiKey   string
	endpoint string
	model    string
	http     *retryablehttp.Client
	log      *zap.Logger
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

type hfGenerated struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFaceClient creates a client posting to {endpoint}/{model}.
func NewHuggingFaceClient(cfg config.ProviderConfig, hc *http.Client) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		http:     newRetryingClient(cfg.Provider, cfg.Timeout, hc),
		log:      logging.Get(logging.CategoryLLM),
	}
}

func (c *HuggingFaceClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: fmt.Sprintf("%s\n\nUser: %s\nAssistant: ", systemPrompt, userPrompt),
		Parameters: hfParameters{
			MaxNewTokens: maxTokens,
			Temperature:  temperature,
			DoSample:     true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug("text generation", zap.String("model", c.model))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readReply(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return "", &APIError{Provider: config.ProviderHuggingFace, Status: resp.StatusCode, Message: msg}
	}

	// The API answers with a list or a single object depending on the model.
	var list []hfGenerated
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return "", fmt.Errorf("huggingface returned no generations")
		}
		return list[0].GeneratedText, nil
	}
	var one hfGenerated
	if err := json.Unmarshal(data, &one); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return one.GeneratedText, nil
}
