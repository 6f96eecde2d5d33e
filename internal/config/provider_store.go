package config

import "sync"

// ProviderStore owns the current ProviderConfig and notifies subscribers when
// it changes. Construct one per process and pass it to whoever needs it.
type ProviderStore struct {
	mu     sync.RWMutex
	cfg    ProviderConfig
	nextID int
	subs   map[int]chan ProviderConfig
}

// NewProviderStore creates a store holding initial.
func NewProviderStore(initial ProviderConfig) *ProviderStore {
	return &ProviderStore{
		cfg:  initial,
		subs: make(map[int]chan ProviderConfig),
	}
}

// Get returns a copy of the current configuration.
func (s *ProviderStore) Get() ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update replaces the configuration and publishes it to every subscriber.
// Returns false when the value did not change.
func (s *ProviderStore) Update(cfg ProviderConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg == s.cfg {
		return false
	}
	s.cfg = cfg

	for _, ch := range s.subs {
		publishLatest(ch, cfg)
	}
	return true
}

// Subscribe registers a listener. The channel holds at most one pending value;
// a slow reader only ever sees the latest configuration. Call the returned
// function to unsubscribe, which closes the channel.
func (s *ProviderStore) Subscribe() (<-chan ProviderConfig, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan ProviderConfig, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publishLatest replaces any pending value with cfg. Callers hold s.mu, so
// there is a single sender per channel at a time.
func publishLatest(ch chan ProviderConfig, cfg ProviderConfig) {
	select {
	case ch <- cfg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- cfg
}
