package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Token is a short-lived access token. No refresh token is ever kept; an
// expired token is replaced by a fresh consent.
type Token struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

// Valid reports whether the token is usable at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.Expiry)
}

// TokenStore persists a token between CLI runs.
type TokenStore interface {
	// Load returns nil, nil when nothing is stored.
	Load() (*Token, error)
	Save(tok *Token) error
	Clear() error
}

// FileTokenStore stores the token as JSON readable only by the owner.
type FileTokenStore struct {
	path string
}

// DefaultTokenPath returns ~/.autoform/google_token.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".autoform", "google_token.json"), nil
}

// NewFileTokenStore returns a store at path, or at DefaultTokenPath when
// path is empty.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		p, err := DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileTokenStore{path: path}, nil
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &tok, nil
}

func (s *FileTokenStore) Save(tok *Token) error {
	if tok == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
