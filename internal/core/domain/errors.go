package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrStorage            = errors.New("storage failure")
	ErrCipher             = errors.New("cipher failure")
)

// ValidationError reports caller input that was rejected. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ErrLoginTaken is the validation failure for a login that already belongs to a user.
var ErrLoginTaken = &ValidationError{Field: "login", Reason: "login already taken"}

// StorageError wraps an I/O failure of the entity store.
type StorageError struct {
	Op   string
	Kind string
	ID   string
	Err  error
}

func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError builds a StorageError for op on kind/id.
func NewStorageError(op, kind, id string, err error) error {
	return &StorageError{Op: op, Kind: kind, ID: id, Err: err}
}
