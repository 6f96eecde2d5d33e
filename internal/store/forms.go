// Package store keeps a local history of the forms autoform has created.
//
// The remote Forms API offers no way to list or delete the forms a user
// owns, so the history is the only place a created form's responder and
// edit links survive the process that made them. Forgetting a form removes
// the local row only; the remote form is untouched.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"autoform/internal/logging"
)

// FormRecord is one created form.
type FormRecord struct {
	FormID       string    `json:"form_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ResponderURI string    `json:"responder_uri"`
	EditURL      string    `json:"edit_url"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Fields       int       `json:"fields"`
	Skipped      int       `json:"skipped,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FormStore is a sqlite backed list of FormRecords, newest first.
type FormStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// DefaultPath returns ~/.autoform/forms.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".autoform", "forms.db"), nil
}

// NewFormStore opens or creates the history database at path. An empty
// path uses DefaultPath.
func NewFormStore(path string) (*FormStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &FormStore{db: db, dbPath: path, log: logging.Get(logging.CategoryStore)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *FormStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *FormStore) Path() string {
	return s.dbPath
}

func (s *FormStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS forms (
		form_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		responder_uri TEXT NOT NULL,
		edit_url TEXT NOT NULL,
		submission_id TEXT NOT NULL DEFAULT '',
		fields INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_forms_created ON forms(created_at);
	`)
	return err
}

// Record stores rec, replacing an earlier record with the same form id.
func (s *FormStore) Record(rec FormRecord) error {
	if strings.TrimSpace(rec.FormID) == "" {
		return fmt.Errorf("form id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO forms (form_id, title, description, responder_uri, edit_url,
			submission_id, fields, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(form_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			responder_uri = excluded.responder_uri,
			edit_url = excluded.edit_url,
			submission_id = excluded.submission_id,
			fields = excluded.fields,
			skipped = excluded.skipped,
			created_at = excluded.created_at
	`, rec.FormID, rec.Title, rec.Description, rec.ResponderURI, rec.EditURL,
		rec.SubmissionID, rec.Fields, rec.Skipped, rec.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record form %s: %w", rec.FormID, err)
	}
	s.log.Debug("form recorded", zap.String("form_id", rec.FormID), zap.String("title", rec.Title))
	return nil
}

// Get returns the record for formID, or nil when there is none.
func (s *FormStore) Get(formID string) (*FormRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+columns+` FROM forms WHERE form_id = ?`, formID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load form %s: %w", formID, err)
	}
	return rec, nil
}

// List returns records newest first. A non-empty query keeps records whose
// title or description contains it, ignoring ASCII case. limit <= 0 means
// no limit.
func (s *FormStore) List(query string, limit int) ([]FormRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := `SELECT ` + columns + ` FROM forms`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(query) + "%"
		q += ` WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}
	q += ` ORDER BY created_at DESC, form_id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var out []FormRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read form row: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Forget removes formID from the history and reports whether it was there.
func (s *FormStore) Forget(formID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM forms WHERE form_id = ?`, formID)
	if err != nil {
		return false, fmt.Errorf("failed to forget form %s: %w", formID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const columns = `form_id, title, description, responder_uri, edit_url, submission_id, fields, skipped, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*FormRecord, error) {
	var rec FormRecord
	var created int64
	if err := row.Scan(&rec.FormID, &rec.Title, &rec.Description, &rec.ResponderURI,
		&rec.EditURL, &rec.SubmissionID, &rec.Fields, &rec.Skipped, &created); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	return &rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
