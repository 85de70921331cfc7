package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNameRequired = errors.New("name is required")
)

// ValidationError rejects a request before any side effect is performed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TooLargeError rejects a payload exceeding the configured size limit.
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file size %d exceeds maximum %d bytes", e.Size, e.Max)
}

// NotFoundError signals that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError signals that the request collides with an existing
// resource. For duplicate uploads ExistingID names the prior document.
type ConflictError struct {
	Message    string
	ExistingID string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError wraps a backend I/O failure. Absent objects are never a
// StorageError; only genuine read/write faults are.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func notFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
