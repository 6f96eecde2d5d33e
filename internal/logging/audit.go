package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one step of a form's life.
type AuditEventType string

const (
	AuditSchemaGenerated  AuditEventType = "schema_generated"
	AuditSubmissionStart  AuditEventType = "submission_start"
	AuditBatchApplied     AuditEventType = "batch_applied"
	AuditFormCreated      AuditEventType = "form_created"
	AuditSubmissionFailed AuditEventType = "submission_failed"
	AuditConsent          AuditEventType = "consent"
)

// AuditEvent is one JSON line of the audit trail.
type AuditEvent struct {
	Timestamp    int64          `json:"ts"` // Unix milliseconds
	EventType    AuditEventType `json:"event"`
	Category     string         `json:"cat,omitempty"`
	SubmissionID string         `json:"submission,omitempty"`
	FormID       string         `json:"form,omitempty"`
	Target       string         `json:"target,omitempty"`
	Success      bool           `json:"success"`
	DurationMs   int64          `json:"dur_ms,omitempty"`
	Error        string         `json:"error,omitempty"`
	Message      string         `json:"msg,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditMu     sync.Mutex
	auditOut    io.Writer
	auditCloser io.Closer
)

// AuditLogger writes events scoped to one submission or category. Writes
// are dropped until InitAudit or SetAuditWriter is called.
type AuditLogger struct {
	submissionID string
	category     Category
}

// InitAudit appends the audit trail to path, creating it if needed.
func InitAudit(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditCloser != nil {
		auditCloser.Close()
	}
	auditOut, auditCloser = file, file
	return nil
}

// SetAuditWriter sends the audit trail to w. A nil w disables it.
func SetAuditWriter(w io.Writer) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditOut, auditCloser = w, nil
}

// CloseAudit closes the audit file and disables the trail.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditCloser != nil {
		auditCloser.Close()
	}
	auditOut, auditCloser = nil, nil
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger { return &AuditLogger{} }

// AuditWithSubmission scopes events to a submission id.
func AuditWithSubmission(submissionID string) *AuditLogger {
	return &AuditLogger{submissionID: submissionID, category: CategoryForms}
}

// AuditWithCategory scopes events to a log category.
func AuditWithCategory(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes event as one JSON line.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditOut == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SubmissionID == "" {
		event.SubmissionID = a.submissionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = auditOut.Write(append(data, '\n'))
}

// =============================================================================
// CONVENIENCE METHODS
// =============================================================================

func (a *AuditLogger) SchemaGenerated(provider, title string, fields int) {
	a.Log(AuditEvent{
		EventType: AuditSchemaGenerated,
		Target:    title,
		Success:   true,
		Fields:    map[string]any{"provider": provider, "fields": fields},
	})
}

func (a *AuditLogger) SubmissionStart(title string, requests, batches int) {
	a.Log(AuditEvent{
		EventType: AuditSubmissionStart,
		Target:    title,
		Success:   true,
		Fields:    map[string]any{"requests": requests, "batches": batches},
	})
}

func (a *AuditLogger) BatchApplied(formID string, batch, total, size int) {
	a.Log(AuditEvent{
		EventType: AuditBatchApplied,
		FormID:    formID,
		Success:   true,
		Fields:    map[string]any{"batch": batch, "of": total, "requests": size},
	})
}

func (a *AuditLogger) FormCreated(formID, responderURI string, duration time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditFormCreated,
		FormID:     formID,
		Target:     responderURI,
		Success:    true,
		DurationMs: duration.Milliseconds(),
	})
}

func (a *AuditLogger) SubmissionFailed(stage, formID string, err error, duration time.Duration) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	a.Log(AuditEvent{
		EventType:  AuditSubmissionFailed,
		FormID:     formID,
		Target:     stage,
		Error:      msg,
		DurationMs: duration.Milliseconds(),
	})
}

func (a *AuditLogger) Consent(state string, err error) {
	e := AuditEvent{EventType: AuditConsent, Target: state, Success: err == nil}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}
