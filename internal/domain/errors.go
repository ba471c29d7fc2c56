package domain

import "errors"

// Typed failures surfaced by the service layer and mapped to HTTP status
// codes at the API boundary (never by string matching — see httpapi/errors.go).
var (
	// ErrNotFound is returned when a requested Task or User does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict is returned when an update's expected version no
	// longer matches the stored version (P1).
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrInvalidOperation is returned when a domain rule is violated (past
	// due date, overdue-gate violation, explicit client-set Overdue status).
	ErrInvalidOperation = errors.New("invalid operation")
)

// InvalidOperationError wraps ErrInvalidOperation with a human-readable reason.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string { return e.Reason }

func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

// NewInvalidOperation builds an InvalidOperationError with the given reason.
func NewInvalidOperation(reason string) error {
	return &InvalidOperationError{Reason: reason}
}
