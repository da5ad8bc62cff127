package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no stored run matches an ID.
var ErrNotFound = errors.New("run not found")

// Error wraps a driver failure with the store operation that hit it.
type Error struct {
	Op  string // Operation that failed ("open", "save", "load", ...)
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
