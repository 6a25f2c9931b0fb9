package errors

import "fmt"

// OpError is a specialized error type for simple operational failures that
// don't need the richer context ValidationError/StorageError/IndexError
// carry: "this operation doesn't exist for this store", "that read range is
// out of bounds", "the context was canceled".
type OpError struct {
	*baseError
	operation string
}

// NewOpError creates a new operation-specific error.
func NewOpError(err error, code ErrorCode, msg string) *OpError {
	return &OpError{baseError: NewBaseError(err, code, msg)}
}

// WithOperation records which operation produced the error.
func (oe *OpError) WithOperation(operation string) *OpError {
	oe.operation = operation
	return oe
}

// WithDetail adds contextual information while maintaining the OpError type.
func (oe *OpError) WithDetail(key string, value any) *OpError {
	oe.baseError.WithDetail(key, value)
	return oe
}

// Operation returns the operation name, if set.
func (oe *OpError) Operation() string {
	return oe.operation
}

// NewNotFoundError builds a NotFound-kind error, used by
// delete(ThrowIfNotExists), not by try_get which returns an option.
func NewNotFoundError(path string) *OpError {
	return NewOpError(nil, ErrorCodeNotFound, fmt.Sprintf("not found: %s", path))
}

// NewAlreadyExistsError builds an AlreadyExists-kind error
// (create(ThrowIfExists) on an existing file).
func NewAlreadyExistsError(path string) *OpError {
	return NewOpError(nil, ErrorCodeAlreadyExists, fmt.Sprintf("already exists: %s", path))
}

// NewOutOfRangeError builds an OutOfRange-kind error for a read past EOF.
func NewOutOfRangeError(offset, length int64) *OpError {
	return NewOpError(nil, ErrorCodeOutOfRange, "read offset is out of range").
		WithDetail("offset", offset).
		WithDetail("length", length)
}

// NewNotSupportedError builds a NotSupported-kind error for operations an
// engine variant deliberately refuses (e.g. remove on an append-only log).
func NewNotSupportedError(operation string) *OpError {
	return NewOpError(nil, ErrorCodeNotSupported, fmt.Sprintf("operation not supported: %s", operation)).
		WithOperation(operation)
}

// NewCapacityExceededError builds a CapacityExceeded-kind error for bounded
// structures (a capped index, a size-bounded segment write).
func NewCapacityExceededError(operation string, limit int64) *OpError {
	return NewOpError(nil, ErrorCodeCapacityExceeded, fmt.Sprintf("capacity exceeded: %s", operation)).
		WithOperation(operation).
		WithDetail("limit", limit)
}

// NewCanceledError builds a Canceled-kind error wrapping the context error
// that triggered it.
func NewCanceledError(cause error, operation string) *OpError {
	return NewOpError(cause, ErrorCodeCanceled, fmt.Sprintf("operation canceled: %s", operation)).
		WithOperation(operation)
}
