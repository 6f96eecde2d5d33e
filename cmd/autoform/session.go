package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"autoform/internal/auth"
	"autoform/internal/config"
)

// formsSession is what the forms commands need from the auth session.
type formsSession interface {
	Authenticate(ctx context.Context) error
	AuthorizedHeaders() (http.Header, error)
}

// openSession builds the OAuth session with the file token store. Tests
// replace newFormsSession to avoid a browser.
func openSession(c *config.Config) (*auth.Session, *auth.FileTokenStore, error) {
	if err := c.ValidateGoogle(); err != nil {
		return nil, nil, err
	}
	consent, err := auth.NewLoopbackConsent(c.Google, c.GetConsentTimeout(), auth.WithURLWriter(os.Stderr))
	if err != nil {
		return nil, nil, err
	}
	store, err := auth.NewFileTokenStore("")
	if err != nil {
		return nil, nil, err
	}
	return auth.NewSession(consent, auth.WithTokenStore(store)), store, nil
}

var newFormsSession = func(c *config.Config) (formsSession, error) {
	s, _, err := openSession(c)
	if err != nil {
		return nil, fmt.Errorf("failed to set up Google sign-in: %w", err)
	}
	return s, nil
}
