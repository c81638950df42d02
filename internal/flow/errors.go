package flow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrPersonRequired = errors.New("counterparty is required")
	ErrMissingFields  = errors.New("missing required fields")
	ErrUseButtons     = errors.New("choose using the buttons")
	ErrUnknownStep    = errors.New("unknown dialogue step")
)

// ValidationError is a rejected input at one step. It matches both the flow error
// and the underlying field error with errors.Is.
type ValidationError struct {
	Field  string
	Err    error
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Field, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Reason == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Reason}
}

func invalid(field string, err, reason error) *ValidationError {
	return &ValidationError{Field: field, Err: err, Reason: reason}
}
