package config

// DefaultFormsScopes are the OAuth scopes needed to build forms and read
// their responses.
var DefaultFormsScopes = []string{
	"https://www.googleapis.com/auth/forms.body",
	"https://www.googleapis.com/auth/forms.responses.readonly",
}

// MaxBatchSize is the largest number of requests a single batchUpdate call
// accepts.
const MaxBatchSize = 100

// GoogleConfig configures the OAuth client used for consent.
type GoogleConfig struct {
	ClientID       string   `yaml:"client_id"`
	ClientSecret   string   `yaml:"client_secret"`
	RedirectURL    string   `yaml:"redirect_url"`
	Scopes         []string `yaml:"scopes"`
	ConsentTimeout string   `yaml:"consent_timeout"`
}

// FormsConfig configures calls against the Forms REST API.
type FormsConfig struct {
	BaseURL          string `yaml:"base_url"`
	BatchSize        int    `yaml:"batch_size"`
	BatchCooldown    string `yaml:"batch_cooldown"`
	RateLimitRetries int    `yaml:"rate_limit_retries"`
	BackoffMin       string `yaml:"backoff_min"`
	BackoffMax       string `yaml:"backoff_max"`
	RequestTimeout   string `yaml:"request_timeout"`

	// HistoryPath is the sqlite file listing created forms. Empty means
	// ~/.autoform/forms.db.
	HistoryPath string `yaml:"history_path"`
}
