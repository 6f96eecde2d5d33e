package llm

import "autoform/internal/config"

// Preset describes a provider's defaults.
type Preset struct {
	Name           string
	DisplayName    string
	Endpoint       string
	DefaultModel   string
	Models         []string
	RequiresAPIKey bool
	FreeLimit      string
}

var presets = []Preset{
	{
		Name:           config.ProviderGroq,
		DisplayName:    "Groq",
		Endpoint:       "https://api.groq.com/openai/v1/chat/completions",
		DefaultModel:   "llama3-8b-8192",
		Models:         []string{"llama3-8b-8192", "llama3-70b-8192", "mixtral-8x7b-32768", "gemma-7b-it"},
		RequiresAPIKey: true,
		FreeLimit:      "6,000 requests/minute",
	},
	{
		Name:           config.ProviderOpenAI,
		DisplayName:    "OpenAI",
		Endpoint:       "https://api.openai.com/v1/chat/completions",
		DefaultModel:   "gpt-4o-mini",
		Models:         []string{"gpt-4o-mini", "gpt-4o"},
		RequiresAPIKey: true,
		FreeLimit:      "none",
	},
	{
		Name:           config.ProviderGemini,
		DisplayName:    "Google Gemini",
		Endpoint:       "https://generativelanguage.googleapis.com/",
		DefaultModel:   "gemini-pro",
		Models:         []string{"gemini-pro", "gemini-2.0-flash"},
		RequiresAPIKey: true,
		FreeLimit:      "15 requests/minute",
	},
	{
		Name:           config.ProviderHuggingFace,
		DisplayName:    "Hugging Face",
		Endpoint:       "https://api-inference.huggingface.co/models",
		DefaultModel:   "microsoft/DialoGPT-medium",
		Models:         []string{"microsoft/DialoGPT-medium", "microsoft/DialoGPT-large", "facebook/blenderbot-400M-distill"},
		RequiresAPIKey: true,
		FreeLimit:      "rate limited",
	},
	{
		Name:         config.ProviderMock,
		DisplayName:  "Mock Provider",
		DefaultModel: "mock-model",
		Models:       []string{"mock-model"},
		FreeLimit:    "unlimited",
	},
}

// Presets returns every known provider in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetFor looks up a provider by name.
func PresetFor(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
