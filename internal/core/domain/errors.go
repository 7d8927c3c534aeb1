package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSource indicates a source type with no registration.
	ErrUnknownSource = errors.New("unknown source")

	// ErrSourceDisabled indicates the source is registered but disabled.
	ErrSourceDisabled = errors.New("source disabled")

	// ErrConnectorClosed indicates the connector has been shut down.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrNotInitialized indicates an operation ran before Initialize.
	ErrNotInitialized = errors.New("not initialized")

	// ErrRunNotActive indicates EndRun was called without a matching StartRun.
	ErrRunNotActive = errors.New("no active run")

	// ErrStoreUnavailable indicates the signal store failed its health check.
	ErrStoreUnavailable = errors.New("signal store unavailable")

	// ErrTaskNotFound indicates an unknown scheduler task name.
	ErrTaskNotFound = errors.New("scheduled task not found")
)

// ErrorKind classifies connector failures for uniform retry decisions.
type ErrorKind string

const (
	ErrConfig       ErrorKind = "CONFIG_ERROR"
	ErrNetwork      ErrorKind = "NETWORK_ERROR"
	ErrRateLimit    ErrorKind = "RATE_LIMIT_EXCEEDED"
	ErrAuth         ErrorKind = "AUTH_ERROR"
	ErrNotFoundKind ErrorKind = "NOT_FOUND_ERROR"
	ErrValidation   ErrorKind = "VALIDATION_ERROR"
	ErrAPI          ErrorKind = "API_ERROR"
	ErrTimeout      ErrorKind = "TIMEOUT_ERROR"
	ErrUnknown      ErrorKind = "UNKNOWN_ERROR"
)

// DefaultRetryAfter is the backoff hint applied when a rate limit or server
// error response carries no retry header.
const DefaultRetryAfter = 30 * time.Second

// SourceError is a classified connector failure. Every connector folds
// provider-specific failures into this shape so the orchestrator never
// branches on provider error types.
type SourceError struct {
	Source SourceType
	Kind   ErrorKind
	Msg    string

	// Retryable indicates the orchestrator may retry the operation.
	Retryable bool

	// RetryAfter hints how long to back off. Only meaningful for
	// rate-limit and server errors; zero means no hint.
	RetryAfter time.Duration

	// Err is the underlying cause, if any.
	Err error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Source, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Msg)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError builds a classified error with retryability derived from
// the kind: network, rate-limit, API and timeout failures are retryable.
func NewSourceError(source SourceType, kind ErrorKind, msg string, err error) *SourceError {
	se := &SourceError{
		Source:    source,
		Kind:      kind,
		Msg:       msg,
		Err:       err,
		Retryable: kind == ErrNetwork || kind == ErrRateLimit || kind == ErrAPI || kind == ErrTimeout,
	}
	if kind == ErrRateLimit {
		se.RetryAfter = DefaultRetryAfter
	}
	return se
}

// AsSourceError unwraps a SourceError from an error chain.
func AsSourceError(err error) (*SourceError, bool) {
	var se *SourceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ClassifyError folds an arbitrary error into an ErrorKind. Errors that
// already carry a classification keep it.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrUnknown
	}
	if se, ok := AsSourceError(err); ok {
		return se.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ErrValidation
	case errors.Is(err, ErrNotFound):
		return ErrNotFoundKind
	case errors.Is(err, ErrConnectorClosed):
		return ErrConfig
	default:
		return ErrUnknown
	}
}

// IsRetryable reports whether the orchestrator should retry after err.
func IsRetryable(err error) bool {
	if se, ok := AsSourceError(err); ok {
		return se.Retryable
	}
	return false
}
