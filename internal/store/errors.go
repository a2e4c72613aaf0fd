package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// CodeLoadNotFound indicates the source document does not exist.
	// Construction-time, fatal.
	CodeLoadNotFound ErrorCode = "LOAD_NOT_FOUND"

	// CodeParseFailure indicates required sections were missing or
	// malformed. Construction-time, fatal.
	CodeParseFailure ErrorCode = "PARSE_FAILURE"

	// CodeSizeExceeded indicates the serialized store would exceed
	// MaxSize. Fatal at load, recoverable at mutation (the store is left
	// byte-for-byte unchanged).
	CodeSizeExceeded ErrorCode = "SIZE_EXCEEDED"

	// CodeUpdateRejected indicates a value was not representable.
	// Recoverable; the store is unchanged.
	CodeUpdateRejected ErrorCode = "UPDATE_REJECTED"
)

// Op identifies the phase an error occurred in.
type Op string

const (
	// OpLoad marks construction-time errors.
	OpLoad Op = "load"

	// OpMutation marks recoverable set/update errors.
	OpMutation Op = "mutation"
)

// Error is a structured store error. The message names the specific
// invariant violated; construction errors carry concrete remediation (the
// template path or the numeric size limit).
type Error struct {
	Code    ErrorCode
	Op      Op
	Message string

	// Key identifies the offending key for single-key mutations.
	Key string

	// Size and Limit are set on SIZE_EXCEEDED errors, in bytes.
	Size  int64
	Limit int64

	// Err is the underlying cause (e.g. a story.ParseError).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (op=%s, key=%s)", e.Code, e.Message, e.Op, e.Key)
	}
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSizeExceeded returns true if the error is a SIZE_EXCEEDED error.
// Uses errors.As to handle wrapped errors.
func IsSizeExceeded(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeSizeExceeded
}

// IsUpdateRejected returns true if the error is an UPDATE_REJECTED error.
func IsUpdateRejected(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeUpdateRejected
}

// IsParseFailure returns true if the error is a PARSE_FAILURE error.
func IsParseFailure(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeParseFailure
}

// IsLoadNotFound returns true if the error is a LOAD_NOT_FOUND error.
func IsLoadNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeLoadNotFound
}

// newSizeExceeded builds a SIZE_EXCEEDED error for the given phase.
func newSizeExceeded(op Op, key string, size, limit int64) *Error {
	return &Error{
		Code: CodeSizeExceeded,
		Op:   op,
		Key:  key,
		Message: fmt.Sprintf("serialized store size %d bytes would exceed the %d byte limit",
			size, limit),
		Size:  size,
		Limit: limit,
	}
}

// newUpdateRejected builds an UPDATE_REJECTED error for an unrepresentable value.
func newUpdateRejected(key string, cause error) *Error {
	return &Error{
		Code:    CodeUpdateRejected,
		Op:      OpMutation,
		Key:     key,
		Message: fmt.Sprintf("value is not representable: %v", cause),
		Err:     cause,
	}
}
