package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoform/internal/config"
)

func TestOpenAIClient_CompleteWithSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer gk", r.Header.Get("Authorization"))
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3-8b-8192", req.Model)
		assert.Equal(t, []chatMessage{{"system", "sys"}, {"user", "usr"}}, req.Messages)
		assert.Equal(t, map[string]string{"type": "json_object"}, req.ResponseFormat)
		assert.Equal(t, 3000, req.MaxTokens)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"title\":\"x\"}  "}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(config.ProviderConfig{Provider: config.ProviderGroq, APIKey: "gk", Endpoint: srv.URL}, srv.Client())
	require.NoError(t, err)
	require.IsType(t, &OpenAIClient{}, c)

	out, err := c.CompleteWithSystem(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, out)
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.ProviderConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "m", Endpoint: srv.URL}, srv.Client())
	_, err := c.CompleteWithSystem(context.Background(), "s", "u")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "openai API error: 401 - Invalid API Key", apiErr.Error())
}

func TestProviders_OversizedReplyRejected(t *testing.T) {
	huge := `{"choices":[{"message":{"content":"` + strings.Repeat("a", maxReplyBody) + `"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, huge)
	}))
	defer srv.Close()

	clients := map[string]Client{
		"openai":      NewOpenAIClient(config.ProviderConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "m", Endpoint: srv.URL}, srv.Client()),
		"huggingface": NewHuggingFaceClient(config.ProviderConfig{Provider: config.ProviderHuggingFace, APIKey: "k", Model: "m", Endpoint: srv.URL}, srv.Client()),
	}
	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			_, err := c.CompleteWithSystem(context.Background(), "s", "u")
			assert.ErrorIs(t, err, ErrReplyTooLarge)
		})
	}
}

func TestHuggingFaceClient(t *testing.T) {
	for name, body := range map[string]string{
		"list":   `[{"generated_text":"Sure! {\"title\":\"hf\"}"}]`,
		"object": `{"generated_text":"Sure! {\"title\":\"hf\"}"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/models/microsoft/DialoGPT-medium", r.URL.Path)
				var req hfRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "sys\n\nUser: usr\nAssistant: ", req.Inputs)
				assert.Equal(t, hfParameters{MaxNewTokens: 3000, Temperature: 0.1, DoSample: true}, req.Parameters)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c, err := NewClient(config.ProviderConfig{Provider: config.ProviderHuggingFace, APIKey: "hk", Endpoint: srv.URL + "/models/"}, srv.Client())
			require.NoError(t, err)
			out, err := c.CompleteWithSystem(context.Background(), "sys", "usr")
			require.NoError(t, err)
			assert.Equal(t, `Sure! {"title":"hf"}`, out)
		})
	}
}

func TestGeminiClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-pro:generateContent"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Please respond with valid JSON only")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"title\":\"g\"}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(config.ProviderConfig{Provider: config.ProviderGemini, APIKey: "gem", Endpoint: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)
	out, err := c.CompleteWithSystem(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"g"}`, out)
}

func TestNewClient_Configuration(t *testing.T) {
	_, err := NewClient(config.ProviderConfig{Provider: "claude"}, nil)
	assert.ErrorContains(t, err, `unsupported provider "claude"`)

	_, err = NewClient(config.ProviderConfig{Provider: config.ProviderGroq}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewClient(config.ProviderConfig{Provider: config.ProviderGroq, APIKey: "k"}, nil)
	require.NoError(t, err)
	oc := c.(*OpenAIClient)
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", oc.endpoint)
	assert.Equal(t, "llama3-8b-8192", oc.model)

	m, err := NewClient(config.ProviderConfig{Provider: config.ProviderMock}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, m)
}

func TestPresets(t *testing.T) {
	names := []string{}
	for _, p := range Presets() {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.DefaultModel, p.Name)
		assert.Equal(t, p.Name != config.ProviderMock, p.RequiresAPIKey, p.Name)
	}
	assert.ElementsMatch(t, config.ValidProviders, names)

	p, ok := PresetFor(config.ProviderHuggingFace)
	require.True(t, ok)
	assert.Equal(t, "microsoft/DialoGPT-medium", p.DefaultModel)
	_, ok = PresetFor("nope")
	assert.False(t, ok)
}
