package engine

import (
	"errors"
	"fmt"
)

// Error represents a failure at the engine-adapter boundary.
//
// Adapter errors abort the enclosing relational transaction on the
// incremental path: the row write and the graph mutation commit or
// roll back together, so relational and graph state cannot silently
// skew. Error carries structured fields so callers can log the exact
// edge slot involved.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op is the adapter operation that failed ("add", "delete",
	// "clear", "score").
	Op string

	// Subject and Object identify the edge slot, when applicable.
	Subject string
	Object  string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Code categorizes adapter errors.
type Code string

const (
	// CodeUnavailable indicates the engine cannot be reached or is
	// mid-initialization. The triggering transaction rolls back; the
	// write may be retried once the engine is back.
	CodeUnavailable Code = "ENGINE_UNAVAILABLE"

	// CodeInvalidOperand indicates a malformed identifier or a
	// non-finite weight. Caller error; never retried automatically.
	CodeInvalidOperand Code = "INVALID_OPERAND"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subject != "" || e.Object != "" {
		return fmt.Sprintf("%s: %s %s (%s -> %s)", e.Code, e.Op, e.Message, e.Subject, e.Object)
	}
	return fmt.Sprintf("%s: %s %s", e.Code, e.Op, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if the error is an engine-unavailable
// error. Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == CodeUnavailable
	}
	return false
}

// IsInvalidOperand returns true if the error is an invalid-operand
// error. Uses errors.As to handle wrapped errors.
func IsInvalidOperand(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == CodeInvalidOperand
	}
	return false
}

// NewUnavailable creates an engine-unavailable Error for op.
func NewUnavailable(op string, err error) *Error {
	return &Error{
		Code:    CodeUnavailable,
		Op:      op,
		Message: "engine unavailable",
		Err:     err,
	}
}

// NewInvalidOperand creates an invalid-operand Error for an edge slot.
func NewInvalidOperand(op, subject, object, message string) *Error {
	return &Error{
		Code:    CodeInvalidOperand,
		Op:      op,
		Subject: subject,
		Object:  object,
		Message: message,
	}
}
