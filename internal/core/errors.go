package core

import (
	"errors"
	"fmt"
)

// ErrorCategory groups error codes by how the caller should react.
type ErrorCategory string

const (
	// ErrCatValidation: a duration, cadence or config value was rejected.
	ErrCatValidation ErrorCategory = "validation"
	// ErrCatState: the operation is not allowed in the sequencer's state.
	ErrCatState ErrorCategory = "state"
	// ErrCatInterrupted: a wait or relay ended before it completed.
	ErrCatInterrupted ErrorCategory = "interrupted"
	// ErrCatJournal: the session journal could not be read or written.
	ErrCatJournal ErrorCategory = "journal"
	ErrCatNotFound ErrorCategory = "not_found"
	ErrCatInternal ErrorCategory = "internal"
)

// Error codes.
const (
	CodeInvalidDuration = "INVALID_DURATION"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidCadence  = "INVALID_CADENCE"

	CodeAlreadyStarted = "ALREADY_STARTED"
	CodeNotStarted     = "NOT_STARTED"
	CodeStopped        = "STOPPED"

	CodeWaitInterrupted = "WAIT_INTERRUPTED"
	CodeConsumerGone    = "CONSUMER_GONE"
	CodeJournalFailed   = "JOURNAL_FAILED"
	CodeNotFound        = "NOT_FOUND"
)

// DomainError carries a stable code next to the human message so callers
// can branch on Code instead of matching text.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
	Details  map[string]interface{}
}

func newError(cat ErrorCategory, code, message string) *DomainError {
	return &DomainError{Category: cat, Code: code, Message: message}
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches another DomainError with the same category and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Category == t.Category && e.Code == t.Code
}

// WithCause sets the wrapped error and returns e.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail attaches a key/value pair and returns e.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, 2)
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return newError(ErrCatValidation, code, message)
}

// ErrState creates an error for an operation the current state forbids.
func ErrState(code, message string) *DomainError {
	return newError(ErrCatState, code, message)
}

// ErrNotFound reports a missing resource such as an unknown session id.
func ErrNotFound(resource, id string) *DomainError {
	return newError(ErrCatNotFound, CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id)).
		WithDetail(resource, id)
}

// ErrJournal wraps a storage failure during op.
func ErrJournal(op string, cause error) *DomainError {
	return newError(ErrCatJournal, CodeJournalFailed, op).WithCause(cause)
}

// ErrInvalidDuration is returned for a negative phase duration.
func ErrInvalidDuration(name string, value interface{}) *DomainError {
	return ErrValidation(CodeInvalidDuration, fmt.Sprintf("%s duration must not be negative", name)).
		WithDetail("name", name).
		WithDetail("value", value)
}

// ErrWaitInterrupted is returned when a phase wait ends early. The
// sequencer does not resume a partially elapsed wait.
func ErrWaitInterrupted(phase Phase, cause error) *DomainError {
	return newError(ErrCatInterrupted, CodeWaitInterrupted, fmt.Sprintf("wait for %s interrupted", phase)).
		WithCause(cause).
		WithDetail("phase", string(phase))
}

// ErrConsumerGone is returned when the receiving side of a phase relay
// has stopped receiving.
func ErrConsumerGone(cause error) *DomainError {
	return newError(ErrCatInterrupted, CodeConsumerGone, "phase consumer is no longer receiving").
		WithCause(cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Code
	}
	return ""
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	return code != "" && CodeOf(err) == code
}

// GetCategory extracts the error category. Plain errors are internal.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}
