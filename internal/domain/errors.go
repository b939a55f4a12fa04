package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a lookup for a record that does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied reports refused access to a media source. The
// requesting action is skipped, not failed.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError reports one or more missing required fields. It blocks a
// transition; the caller corrects the input and retries.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// NetworkError wraps a transport-level failure where no response was
// received. In-memory state is untouched and the operation may be retried.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejection is a non-2xx response from the backend. Body is surfaced
// verbatim to the user.
type ServerRejection struct {
	StatusCode int
	Body       string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("server rejected request (status %d): %s", e.StatusCode, e.Body)
}
