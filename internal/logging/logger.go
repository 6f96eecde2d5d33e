// Package logging provides category-scoped structured logging for autoform.
// Every subsystem asks for its own named zap logger; until Initialize is
// called all loggers are no-ops, so library code stays silent under test.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // CLI startup, config loading
	CategoryConfig    Category = "config"    // Provider config changes, file watching
	CategoryLLM       Category = "llm"       // LLM provider calls
	CategorySchema    Category = "schema"    // Cleaning and compatibility checks
	CategoryTranslate Category = "translate" // Schema -> batch request translation
	CategoryForms     Category = "forms"     // Remote Forms API calls and submission
	CategoryAuth      Category = "auth"      // OAuth consent and token lifecycle
	CategoryStore     Category = "store"     // Local history of created forms
)

// Config mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports
type Config struct {
	Level      string
	Format     string // json or console
	File       string
	Categories map[string]bool
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	enabled map[string]bool
	loggers = make(map[Category]*zap.Logger)
)

// Initialize builds the root logger. Safe to call more than once; the last
// call wins.
func Initialize(cfg Config) error {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		if cfg.Level != "" {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}

	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetLogger(logger, cfg.Categories)
	return nil
}

// SetLogger installs l as the root logger. Tests use this with zaptest or
// observer cores.
func SetLogger(l *zap.Logger, categories map[string]bool) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	enabled = categories
	loggers = make(map[Category]*zap.Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Unlisted categories are enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return isEnabledLocked(category)
}

func isEnabledLocked(category Category) bool {
	if enabled == nil {
		return true
	}
	on, ok := enabled[string(category)]
	return !ok || on
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := zap.NewNop()
	if isEnabledLocked(category) {
		l = root.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Root returns the root logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Root().Sync()
}
