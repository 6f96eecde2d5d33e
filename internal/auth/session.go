package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"autoform/internal/logging"
)

// State is the session lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Grant is what a consent flow hands back: an access token and its TTL as
// reported by the provider.
type Grant struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// ConsentProvider obtains a fresh grant from the user.
type ConsentProvider interface {
	RequestGrant(ctx context.Context) (*Grant, error)
}

// ConsentFunc adapts a function to ConsentProvider.
type ConsentFunc func(ctx context.Context) (*Grant, error)

func (f ConsentFunc) RequestGrant(ctx context.Context) (*Grant, error) { return f(ctx) }

// Session holds the access token for the Forms API. Concurrent Authenticate
// calls share one consent flow. AuthorizedHeaders never touches the network.
type Session struct {
	consent ConsentProvider
	store   TokenStore
	now     func() time.Time
	log     *zap.Logger

	flight singleflight.Group

	mu         sync.Mutex
	state      State
	token      *Token
	onChangeFn func(State)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTokenStore restores a stored token on creation and persists new ones.
func WithTokenStore(store TokenStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithSessionClock replaces time.Now for expiry checks.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithStateListener is called after every state change, outside the lock.
func WithStateListener(fn func(State)) SessionOption {
	return func(s *Session) { s.onChangeFn = fn }
}

// NewSession creates a session. A still-valid token from the store starts
// the session as Authenticated.
func NewSession(consent ConsentProvider, opts ...SessionOption) *Session {
	s := &Session{
		consent: consent,
		now:     time.Now,
		log:     logging.Get(logging.CategoryAuth),
		state:   Unauthenticated,
	}
	for _, o := range opts {
		o(s)
	}
	s.restore()
	return s
}

func (s *Session) restore() {
	if s.store == nil {
		return
	}
	tok, err := s.store.Load()
	if err != nil {
		s.log.Warn("ignoring unreadable token", zap.Error(err))
		return
	}
	switch {
	case tok == nil:
	case tok.Valid(s.now()):
		s.token, s.state = tok, Authenticated
		s.log.Debug("restored stored token", zap.Time("expiry", tok.Expiry))
	default:
		s.log.Debug("stored token already expired", zap.Time("expiry", tok.Expiry))
	}
}

// State returns the current state. An Authenticated session whose token has
// passed its expiry reports Expired.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.state
}

// Expiry returns the current token's expiry, or the zero time.
func (s *Session) Expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return time.Time{}
	}
	return s.token.Expiry
}

func (s *Session) expireLocked() {
	if s.state == Authenticated && !s.token.Valid(s.now()) {
		s.state = Expired
	}
}

// Authenticate makes sure a valid token is held, running the consent flow
// when it is not. Callers arriving while a flow is in progress wait for that
// flow and receive its result. The flow runs under the first caller's
// context; a caller whose own context ends stops waiting without aborting
// the flow for the others.
func (s *Session) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	valid := s.token.Valid(s.now())
	s.mu.Unlock()
	if valid {
		return nil
	}

	ch := s.flight.DoChan("consent", func() (any, error) {
		return nil, s.runConsent(ctx)
	})
	select {
	case res := <-ch:
		if res.Shared {
			s.log.Debug("joined in-flight consent")
		}
		return res.Err
	case <-ctx.Done():
		return classify(ctx.Err())
	}
}

func (s *Session) runConsent(ctx context.Context) error {
	s.mu.Lock()
	// A flow that finished just before this one was scheduled already did
	// the work.
	if s.token.Valid(s.now()) {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	s.state = Authenticating
	s.mu.Unlock()
	s.notify(Authenticating)

	s.log.Info("starting consent", zap.Stringer("from", prev))
	grant, err := s.consent.RequestGrant(ctx)
	if err == nil && (grant == nil || grant.AccessToken == "") {
		err = errors.New("consent returned no access token")
	}
	if err != nil {
		err = classify(err)
		s.mu.Lock()
		s.token, s.state = nil, Unauthenticated
		s.mu.Unlock()
		s.notify(Unauthenticated)
		s.log.Warn("consent failed", zap.Error(err))
		logging.AuditWithCategory(logging.CategoryAuth).Consent(Unauthenticated.String(), err)
		return err
	}

	tok := &Token{AccessToken: grant.AccessToken, Expiry: s.now().Add(grant.ExpiresIn)}
	s.mu.Lock()
	s.token, s.state = tok, Authenticated
	s.mu.Unlock()
	s.notify(Authenticated)
	s.log.Info("authenticated", zap.Time("expiry", tok.Expiry))
	logging.AuditWithCategory(logging.CategoryAuth).Consent(Authenticated.String(), nil)

	if s.store != nil {
		if err := s.store.Save(tok); err != nil {
			s.log.Warn("failed to persist token", zap.Error(err))
		}
	}
	return nil
}

// AuthorizedHeaders returns the bearer and content-type headers for a Forms
// API call.
func (s *Session) AuthorizedHeaders() (http.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil, ErrNotAuthenticated
	}
	if !s.token.Valid(s.now()) {
		s.state = Expired
		return nil, ErrTokenExpired
	}
	h := make(http.Header, 2)
	h.Set("Authorization", "Bearer "+s.token.AccessToken)
	h.Set("Content-Type", "application/json")
	return h, nil
}

// Clear forgets the token in memory and in the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token, s.state = nil, Unauthenticated
	s.mu.Unlock()
	s.notify(Unauthenticated)
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

func (s *Session) notify(st State) {
	if s.onChangeFn != nil {
		s.onChangeFn(st)
	}
}
