package schema

import (
	"errors"
	"fmt"
)

// ErrorKind classifies unrecoverable schema problems.
type ErrorKind string

const (
	ErrNotObject     ErrorKind = "not_object"
	ErrInvalidJSON   ErrorKind = "invalid_json"
	ErrMissingTitle  ErrorKind = "missing_title"
	ErrFieldsNotList ErrorKind = "fields_not_list"
	ErrNoFields      ErrorKind = "no_fields"
)

// SchemaError reports a candidate that cannot be cleaned. It is never
// retryable; Path points at the offending input when known.
type SchemaError struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := e.Detail
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("schema: %s: %v", msg, e.Err)
	}
	return "schema: " + msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsKind reports whether err is a SchemaError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SchemaError
	return errors.As(err, &se) && se.Kind == kind
}

func structureError(kind ErrorKind, path, detail string) *SchemaError {
	return &SchemaError{Kind: kind, Path: path, Detail: detail}
}
