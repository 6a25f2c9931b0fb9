package errors

import stdErrors "errors"

// CodecError is a specialized error type for entry-codec failures: a key or
// value could not be serialized to, or deserialized from, its on-disk byte
// representation.
type CodecError struct {
	*baseError
	typeName string // Go type name of the value being encoded/decoded.
	stage    string // "encode" or "decode".
}

// NewCodecError creates a new codec-specific error.
func NewCodecError(err error, code ErrorCode, msg string) *CodecError {
	return &CodecError{baseError: NewBaseError(err, code, msg)}
}

// WithTypeName records which Go type was being encoded/decoded.
func (ce *CodecError) WithTypeName(name string) *CodecError {
	ce.typeName = name
	return ce
}

// WithStage records whether the failure happened during encode or decode.
func (ce *CodecError) WithStage(stage string) *CodecError {
	ce.stage = stage
	return ce
}

// WithDetail adds contextual information while maintaining the CodecError type.
func (ce *CodecError) WithDetail(key string, value any) *CodecError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// TypeName returns the Go type name involved in the failure.
func (ce *CodecError) TypeName() string {
	return ce.typeName
}

// Stage returns "encode" or "decode".
func (ce *CodecError) Stage() string {
	return ce.stage
}

// NewEncodeError creates a CodecError for a failed serialization.
func NewEncodeError(err error, typeName string) *CodecError {
	return NewCodecError(err, ErrorCodeEncodeFailure, "failed to encode value").
		WithTypeName(typeName).
		WithStage("encode")
}

// NewDecodeError creates a CodecError for a failed deserialization.
func NewDecodeError(err error, typeName string) *CodecError {
	return NewCodecError(err, ErrorCodeDecodeFailure, "failed to decode value").
		WithTypeName(typeName).
		WithStage("decode")
}

// IsCodecError checks if the given error is a CodecError or contains one in
// its error chain.
func IsCodecError(err error) bool {
	var ce *CodecError
	return stdErrors.As(err, &ce)
}
