package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"autoform/internal/config"
	"autoform/internal/logging"
)

// defaultTokenTTL is assumed when the token endpoint reports no expiry.
const defaultTokenTTL = time.Hour

// LoopbackConsent runs the authorization-code flow with PKCE against a
// loopback redirect: it opens the consent page, waits for the redirect on a
// local listener and exchanges the code. No refresh token is requested.
type LoopbackConsent struct {
	oauth       oauth2.Config
	redirect    *url.URL
	timeout     time.Duration
	open        func(string) error
	listen      func(addr string) (net.Listener, error)
	urlOut      io.Writer
	tokenClient *http.Client
	log         *zap.Logger
}

// ConsentOption configures a LoopbackConsent.
type ConsentOption func(*LoopbackConsent)

// WithOpener replaces the browser launcher.
func WithOpener(open func(string) error) ConsentOption {
	return func(c *LoopbackConsent) { c.open = open }
}

// WithURLWriter prints the consent URL to w so the user can open it by hand.
// When set, a failure to launch the browser is not fatal.
func WithURLWriter(w io.Writer) ConsentOption {
	return func(c *LoopbackConsent) { c.urlOut = w }
}

// WithEndpoint replaces the Google OAuth endpoint.
func WithEndpoint(ep oauth2.Endpoint) ConsentOption {
	return func(c *LoopbackConsent) { c.oauth.Endpoint = ep }
}

// WithTokenHTTPClient sets the client used for the code exchange.
func WithTokenHTTPClient(hc *http.Client) ConsentOption {
	return func(c *LoopbackConsent) { c.tokenClient = hc }
}

// NewLoopbackConsent builds a consent provider for the Google client in g.
func NewLoopbackConsent(g config.GoogleConfig, timeout time.Duration, opts ...ConsentOption) (*LoopbackConsent, error) {
	if strings.TrimSpace(g.ClientID) == "" {
		return nil, &AuthError{Kind: KindInvalidClient, Err: errors.New("client id is empty")}
	}
	redirect, err := url.Parse(g.RedirectURL)
	if err != nil || redirect.Scheme != "http" || redirect.Host == "" {
		return nil, &AuthError{Kind: KindInvalidClient, Err: fmt.Errorf("redirect URL %q must be an http loopback address", g.RedirectURL)}
	}
	if redirect.Path == "" {
		redirect.Path = "/"
	}
	scopes := g.Scopes
	if len(scopes) == 0 {
		scopes = config.DefaultFormsScopes
	}
	c := &LoopbackConsent{
		oauth: oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		},
		redirect: redirect,
		timeout:  timeout,
		open:     OpenBrowser,
		listen:   func(addr string) (net.Listener, error) { return net.Listen("tcp", addr) },
		log:      logging.Get(logging.CategoryAuth),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// RequestGrant runs one consent flow.
func (c *LoopbackConsent) RequestGrant(ctx context.Context) (*Grant, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ln, err := c.listen(c.redirect.Host)
	if err != nil {
		return nil, &AuthError{Kind: KindUnknown, Err: fmt.Errorf("failed to listen for callback: %w", err)}
	}
	// Port 0 in the configured URL resolves to whatever the listener got.
	redirect := *c.redirect
	redirect.Host = ln.Addr().String()
	cfg := c.oauth
	cfg.RedirectURL = redirect.String()

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	cs := startCallbackServer(ln, redirect.Path, state)
	defer cs.close()

	if c.urlOut != nil {
		fmt.Fprintf(c.urlOut, "If the browser does not open, visit:\n%s\n\n", authURL)
	}
	if err := c.open(authURL); err != nil {
		if c.urlOut == nil {
			return nil, &AuthError{Kind: KindPopupBlocked, Err: err}
		}
		c.log.Warn("could not open browser", zap.Error(err))
	}
	c.log.Debug("waiting for consent callback", zap.String("redirect_uri", cfg.RedirectURL))

	var res callbackResult
	select {
	case res = <-cs.results:
	case <-ctx.Done():
		return nil, classify(ctx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	if c.tokenClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenClient)
	}
	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, classify(err)
	}

	ttl := defaultTokenTTL
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
	}
	return &Grant{AccessToken: tok.AccessToken, ExpiresIn: ttl}, nil
}
