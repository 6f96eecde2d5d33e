package config

import "time"

// Supported LLM providers.
const (
	ProviderGroq        = "groq"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
	ProviderMock        = "mock"
)

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{ProviderGroq, ProviderOpenAI, ProviderGemini, ProviderHuggingFace, ProviderMock}

// IsValidProvider reports whether name is one of ValidProviders.
func IsValidProvider(name string) bool {
	for _, p := range ValidProviders {
		if p == name {
			return true
		}
	}
	return false
}

// LLMConfig configures the schema drafting provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // groq, openai, gemini, huggingface, mock
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// ProviderConfig is the resolved provider selection handed to an LLM client
// at construction. Values are copied, never shared.
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string // Optional model override
	Endpoint string // Optional endpoint override
	Timeout  time.Duration
}

// IsConfigured reports whether a client can be built. The mock provider
// needs nothing; every other provider needs a key and a model.
func (p ProviderConfig) IsConfigured() bool {
	if p.Provider == ProviderMock {
		return true
	}
	return p.APIKey != "" && p.Model != ""
}
