package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all autoform configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM provider used to draft schemas from prompts
	LLM LLMConfig `yaml:"llm"`

	// Google OAuth client used to obtain Forms API tokens
	Google GoogleConfig `yaml:"google"`

	// Remote Forms API submission settings
	Forms FormsConfig `yaml:"forms"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfigPath returns the default path to .autoform/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".autoform", "config.yaml")
	}
	return filepath.Join(cwd, ".autoform", "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "autoform",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider: ProviderMock,
			Timeout:  "60s",
		},

		Google: GoogleConfig{
			RedirectURL:    "http://127.0.0.1:51121/oauth-callback",
			Scopes:         append([]string(nil), DefaultFormsScopes...),
			ConsentTimeout: "3m",
		},

		Forms: FormsConfig{
			BaseURL:          "https://forms.googleapis.com/v1",
			BatchSize:        100,
			BatchCooldown:    "1s",
			RateLimitRetries: 5,
			BackoffMin:       "1s",
			BackoffMax:       "60s",
			RequestTimeout:   "30s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults plus environment when no file exists
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// API keys and client secrets live in this file.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Provider keys, later entries win when several are set
	keyed := []struct {
		env      string
		provider string
	}{
		{"HUGGINGFACE_API_KEY", ProviderHuggingFace},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"GEMINI_API_KEY", ProviderGemini},
		{"GROQ_API_KEY", ProviderGroq},
	}
	for _, k := range keyed {
		if key := os.Getenv(k.env); key != "" {
			c.LLM.APIKey = key
			c.LLM.Provider = k.provider
		}
	}

	// Explicit selection beats key detection
	if p := os.Getenv("AUTOFORM_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = strings.ToLower(p)
	}
	if m := os.Getenv("AUTOFORM_LLM_MODEL"); m != "" {
		c.LLM.Model = m
	}
	if e := os.Getenv("AUTOFORM_LLM_ENDPOINT"); e != "" {
		c.LLM.Endpoint = e
	}

	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		c.Google.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		c.Google.ClientSecret = secret
	}
	if url := os.Getenv("AUTOFORM_FORMS_BASE_URL"); url != "" {
		c.Forms.BaseURL = url
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 60*time.Second)
}

// GetConsentTimeout returns how long the consent flow may wait for the browser.
func (c *Config) GetConsentTimeout() time.Duration {
	return parseDuration(c.Google.ConsentTimeout, 3*time.Minute)
}

// GetBatchCooldown returns the pause between consecutive batch calls.
func (c *Config) GetBatchCooldown() time.Duration {
	return parseDuration(c.Forms.BatchCooldown, time.Second)
}

// GetBackoffMin returns the first rate-limit backoff step.
func (c *Config) GetBackoffMin() time.Duration {
	return parseDuration(c.Forms.BackoffMin, time.Second)
}

// GetBackoffMax returns the backoff ceiling.
func (c *Config) GetBackoffMax() time.Duration {
	return parseDuration(c.Forms.BackoffMax, 60*time.Second)
}

// GetRequestTimeout returns the per-request Forms API timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.Forms.RequestTimeout, 30*time.Second)
}

// ProviderConfig returns the LLM section as the value injected into clients.
func (c *Config) ProviderConfig() ProviderConfig {
	return ProviderConfig{
		Provider: c.LLM.Provider,
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		Endpoint: c.LLM.Endpoint,
		Timeout:  c.GetLLMTimeout(),
	}
}

// Validate validates the parts of the configuration every command needs.
func (c *Config) Validate() error {
	var errs []error

	if !IsValidProvider(c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders))
	} else if c.LLM.Provider != ProviderMock && c.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("LLM API key not configured for provider %s", c.LLM.Provider))
	}

	if c.Forms.BatchSize <= 0 || c.Forms.BatchSize > MaxBatchSize {
		errs = append(errs, fmt.Errorf("forms.batch_size must be between 1 and %d, got %d", MaxBatchSize, c.Forms.BatchSize))
	}
	if c.Forms.RateLimitRetries < 0 {
		errs = append(errs, fmt.Errorf("forms.rate_limit_retries must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateGoogle checks the OAuth client settings needed before submitting.
func (c *Config) ValidateGoogle() error {
	if strings.TrimSpace(c.Google.ClientID) == "" {
		return fmt.Errorf("Google client id not configured (set google.client_id or GOOGLE_CLIENT_ID)")
	}
	if len(c.Google.Scopes) == 0 {
		return fmt.Errorf("google.scopes must not be empty")
	}
	return nil
}
