package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Kind classifies why consent failed.
type Kind string

const (
	KindPopupBlocked    Kind = "popup_blocked"
	KindConsentDeclined Kind = "consent_declined"
	KindInvalidClient   Kind = "invalid_client"
	KindTimeout         Kind = "timeout"
	KindUnknown         Kind = "unknown"
)

var (
	// ErrNotAuthenticated is returned for headers requested before any
	// successful consent.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
	// ErrTokenExpired is returned for headers requested after the access
	// token's expiry. Authenticate again to recover.
	ErrTokenExpired = errors.New("auth: access token expired")
)

// AuthError is a classified consent failure.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	var hint string
	switch e.Kind {
	case KindPopupBlocked:
		hint = "the consent page could not be opened; visit the printed URL manually"
	case KindConsentDeclined:
		hint = "consent was declined or the window was closed"
	case KindInvalidClient:
		hint = "the OAuth client id is invalid or not configured"
	case KindTimeout:
		hint = "consent did not complete in time"
	default:
		hint = "authentication failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", hint, e.Err)
	}
	return "auth: " + hint
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsKind reports whether err is an *AuthError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}

// kindFromCode maps an OAuth error code from the callback or token endpoint.
func kindFromCode(code string) Kind {
	switch code {
	case "access_denied", "consent_required", "interaction_required", "popup_closed":
		return KindConsentDeclined
	case "invalid_client", "unauthorized_client", "redirect_uri_mismatch", "invalid_grant":
		return KindInvalidClient
	case "popup_blocked":
		return KindPopupBlocked
	default:
		return KindUnknown
	}
}

// classify wraps err as an *AuthError, keeping an existing classification.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return &AuthError{Kind: kindFromCode(re.ErrorCode), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AuthError{Kind: KindTimeout, Err: err}
	}
	return &AuthError{Kind: KindUnknown, Err: err}
}
