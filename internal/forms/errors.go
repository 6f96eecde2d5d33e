package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDeleteUnsupported is returned by DeleteForm. The Forms API has no
// delete call, and forms are never removed locally behind its back.
var ErrDeleteUnsupported = errors.New("forms: the Forms API does not support deleting forms")

// ErrInvalidSchema is wrapped by SubmissionError when the schema fails the
// local structural check.
var ErrInvalidSchema = errors.New("forms: schema is not submittable")

// FieldViolation is one entry of a remote error's fieldViolations detail.
type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// RemoteRequestError is a non-2xx response that is not rate limiting.
type RemoteRequestError struct {
	Op         string
	Status     int
	Message    string
	Violations []FieldViolation
	// Reasons holds detail entries that are not field violations.
	Reasons []string
}

func (e *RemoteRequestError) Error() string {
	msg := fmt.Sprintf("forms: %s failed (%d): %s", e.Op, e.Status, e.Message)
	var details []string
	for _, v := range e.Violations {
		details = append(details, fmt.Sprintf("Field '%s': %s", v.Field, v.Description))
	}
	details = append(details, e.Reasons...)
	if len(details) > 0 {
		msg += ". Details: " + strings.Join(details, "; ")
	}
	return msg
}

// RateLimitError means the API kept answering 429 until retries ran out.
type RateLimitError struct {
	Op         string
	Attempts   int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("forms: %s rate limited after %d attempt(s)", e.Op, e.Attempts)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", server asked to wait %s", e.RetryAfter)
	}
	return msg
}

// IsRateLimited reports whether err wraps a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			FieldViolations []FieldViolation `json:"fieldViolations"`
			Reason          string           `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

func parseRemoteError(op string, status int, body []byte) *RemoteRequestError {
	e := &RemoteRequestError{Op: op, Status: status, Message: strings.TrimSpace(string(body))}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return e
	}
	if parsed.Error.Message != "" {
		e.Message = parsed.Error.Message
	}
	for _, d := range parsed.Error.Details {
		e.Violations = append(e.Violations, d.FieldViolations...)
		if len(d.FieldViolations) == 0 && d.Reason != "" {
			e.Reasons = append(e.Reasons, d.Reason)
		}
	}
	return e
}

// Stage names the step of a submission that failed.
type Stage string

const (
	StageAuth      Stage = "auth"
	StageValidate  Stage = "validate"
	StagePreflight Stage = "preflight"
	StageCreate    Stage = "create"
	StageBatch     Stage = "batch"
	StageFetch     Stage = "fetch"
)

// SubmissionError is the single terminal error of SubmitForm. When FormID is
// set a partial form exists remotely; it is not rolled back.
type SubmissionError struct {
	Stage  Stage
	FormID string
	// BatchesSucceeded counts batches applied before the failure.
	BatchesSucceeded int
	// FailedBatch is 1-based; 0 when the failure happened outside batch
	// execution.
	FailedBatch  int
	TotalBatches int
	Skipped      []FieldIncompatibility
	Err          error
}

func (e *SubmissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "submission failed at %s", e.Stage)
	if e.FailedBatch > 0 {
		fmt.Fprintf(&b, " (batch %d of %d, %d succeeded)", e.FailedBatch, e.TotalBatches, e.BatchesSucceeded)
	}
	if e.FormID != "" {
		fmt.Fprintf(&b, "; partial form %s left in place", e.FormID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Partial reports whether a remote form was created before the failure.
func (e *SubmissionError) Partial() bool { return e.FormID != "" }
