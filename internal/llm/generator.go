package llm

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
	"autoform/internal/schema"
)

// Factory builds a client for a provider configuration.
type Factory func(cfg config.ProviderConfig) (Client, error)

// DefaultFactory builds clients with NewClient and hc.
func DefaultFactory(hc *http.Client) Factory {
	return func(cfg config.ProviderConfig) (Client, error) { return NewClient(cfg, hc) }
}

// Generator drafts cleaned schemas. It follows the provider store: a
// published configuration replaces the client before the next call.
type Generator struct {
	factory Factory
	log     *zap.Logger

	mu     sync.Mutex
	cfg    config.ProviderConfig
	client Client

	cancel func()
	done   chan struct{}
}

// NewGenerator subscribes to store. Call Close to unsubscribe.
func NewGenerator(store *config.ProviderStore, factory Factory) *Generator {
	updates, cancel := store.Subscribe()
	g := &Generator{
		factory: factory,
		log:     logging.Get(logging.CategoryLLM),
		cfg:     store.Get(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go g.follow(updates)
	return g
}

func (g *Generator) follow(updates <-chan config.ProviderConfig) {
	defer close(g.done)
	for cfg := range updates {
		g.mu.Lock()
		g.cfg, g.client = cfg, nil
		g.mu.Unlock()
		g.log.Info("provider changed", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))
	}
}

// Close stops following the store.
func (g *Generator) Close() {
	g.cancel()
	<-g.done
}

// Provider returns the configuration the next call will use.
func (g *Generator) Provider() config.ProviderConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

func (g *Generator) currentClient() (Client, config.ProviderConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		c, err := g.factory(g.cfg)
		if err != nil {
			return nil, g.cfg, err
		}
		g.client = c
	}
	return g.client, g.cfg, nil
}

// Raw returns the provider's unprocessed reply for prompt.
func (g *Generator) Raw(ctx context.Context, prompt string, opts Options) (string, error) {
	client, cfg, err := g.currentClient()
	if err != nil {
		return "", err
	}
	g.log.Debug("requesting schema", zap.String("provider", cfg.Provider))
	return client.CompleteWithSystem(ctx, SystemPrompt, UserPrompt(prompt, opts))
}

// Generate asks the provider for a schema and cleans the reply.
func (g *Generator) Generate(ctx context.Context, prompt string, opts Options) (*schema.FormSchema, error) {
	cfg := g.Provider()
	reply, err := g.Raw(ctx, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate form schema (%s): %w", cfg.Provider, err)
	}
	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to generate form schema (%s): %w", cfg.Provider, err)
	}
	s, err := schema.CleanJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to generate form schema (%s): %w", cfg.Provider, err)
	}
	logging.AuditWithCategory(logging.CategoryLLM).SchemaGenerated(cfg.Provider, s.Title, len(s.Fields))
	g.log.Info("schema generated", zap.String("provider", cfg.Provider), zap.String("title", s.Title), zap.Int("fields", len(s.Fields)))
	return s, nil
}
