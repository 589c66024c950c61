package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrValidation           = stderrors.New("validation failed")
	ErrStorage              = stderrors.New("storage failure")
	ErrNotFound             = stderrors.New("not found")
	ErrConfirmationRequired = stderrors.New("confirmation required")
	ErrComputation          = stderrors.New("computation failed")
)

// ValidationError rejects input before any mutation is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError reports a failed repository operation. It is created once at the
// storage boundary and passed upward unchanged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err as a StorageError for op. nil stays nil, and an error that
// is already a StorageError is returned as is.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if stderrors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// NotFound is a StorageError whose cause is ErrNotFound.
func NotFound(op, id string) error {
	return &StorageError{Op: op, Err: fmt.Errorf("habit %s: %w", id, ErrNotFound)}
}

// ComputationError marks stored data the engine could not interpret. Callers
// log it and continue with an empty value.
type ComputationError struct {
	What string
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("cannot interpret %s: %v", e.What, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is caused by a missing record.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsStorage reports whether err came from the repository.
func IsStorage(err error) bool {
	return stderrors.Is(err, ErrStorage)
}
