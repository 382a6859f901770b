package errors

import (
	"errors"
	"fmt"
)

// StoreCode represents a category of session storage failure.
type StoreCode string

const (
	// StoreNotFound indicates a key or table was not found.
	StoreNotFound StoreCode = "not_found"
	// StoreConflict indicates a conflicting write.
	StoreConflict StoreCode = "conflict"
	// StoreValidation indicates the store rejected the data.
	StoreValidation StoreCode = "validation"
	// StoreTimeout indicates a timeout occurred.
	StoreTimeout StoreCode = "timeout"
	// StoreCanceled indicates the operation was canceled.
	StoreCanceled StoreCode = "canceled"
	// StoreInternal indicates an unclassified storage failure.
	StoreInternal StoreCode = "internal"
)

// StoreError is a structured session-store error with a code, message, and optional cause.
type StoreError struct {
	Code    StoreCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// StoreCodeOf returns the StoreCode of err, or empty string if it is not a StoreError.
func StoreCodeOf(err error) StoreCode {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsStoreCode reports whether err is a StoreError with the given code.
func IsStoreCode(err error, code StoreCode) bool {
	return err != nil && StoreCodeOf(err) == code
}
