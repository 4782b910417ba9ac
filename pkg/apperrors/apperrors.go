// Package apperrors classifies failures so callers can decide how much
// of a run a single error should abort: one record, one subscriber, or
// the whole matching sweep.
package apperrors

import (
	"errors"
	"fmt"
)

// Code partitions errors by the scope they are allowed to poison.
type Code string

const (
	// CodeValidation marks a record missing its required identifier;
	// skip the record, keep the batch.
	CodeValidation Code = "VALIDATION"
	// CodeConflict marks a duplicate dedup key; expected, not a fault.
	CodeConflict Code = "CONFLICT"
	// CodeStore marks a store-layer fault; aborts the affected item only.
	CodeStore Code = "STORE"
	// CodeTransport marks a notification send failure; aborts nothing
	// beyond the one subscriber/channel.
	CodeTransport Code = "TRANSPORT"
	// CodePagination marks an incomplete preference fetch; aborts the
	// entire matching sweep, since a partial set risks false negatives.
	CodePagination Code = "PAGINATION"
)

// Error carries a classification code alongside the wrapped cause.
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error without an underlying cause.
func New(code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// Wrap attaches a classification to an existing error.
func Wrap(err error, code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// CodeOf extracts the classification; unclassified errors map to
// CodeStore, the most conservative per-item scope.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStore
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
