package store

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrElementNotFound = errors.New("element not found")
	ErrStoreClosed     = errors.New("store is closed")
	ErrSnapshotFailed  = errors.New("snapshot failed")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op     string // Operation that failed (e.g., "StoreGraph", "VerticesByFile")
	Entity string // Entity type (e.g., "file", "element", "connection")
	ID     string // Entity ID (if applicable)
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func storeErr(op, entity, id string, cause error) *StoreError {
	return &StoreError{Op: op, Entity: entity, ID: id, Cause: cause}
}
