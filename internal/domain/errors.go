package domain

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes exposed to API consumers.
const (
	CodeInvalidRequest  = "request/invalid"
	CodeServiceNotFound = "service/not-found"
	CodeServiceExists   = "service/exists"
	CodeInternal        = "internal"
)

var (
	// ErrNotFound indicates the requested service does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("conflict")
	// ErrStorage is matched by every *StorageError.
	ErrStorage = errors.New("storage failure")

	// ErrServiceExists is returned when a service with the same normalized
	// name is already registered.
	ErrServiceExists = &ConflictError{Code: CodeServiceExists, Message: "service already exists"}
)

// ValidationError reports malformed input rejected before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrConflict) hold for any conflict.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StorageError wraps a failed store operation. All partial writes of the
// operation have been rolled back and it is safe to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) hold for any storage failure.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
