// Package errors provides the catalog's domain errors.
//
// Every failure the catalog core reports carries a Code. Callers match on the
// code with errors.Is against the sentinel values, or extract the *Error with
// errors.As to read its Details:
//
//	if errors.Is(err, errors.ErrAmbiguousMatch) {
//	    var domainErr *errors.Error
//	    errors.As(err, &domainErr)
//	    candidates := domainErr.Details.([]entities.Printing)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeConnection          Code = "CONNECTION"
	CodeSchema              Code = "SCHEMA"
	CodeVersionMismatch     Code = "VERSION_MISMATCH"
	CodeAmbiguousMatch      Code = "AMBIGUOUS_MATCH"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	CodeQuery               Code = "QUERY"
)

// ExitCode returns the process exit code the CLI uses for an error code.
func (c Code) ExitCode() int {
	switch c {
	case CodeConnection:
		return 2
	case CodeSchema:
		return 3
	case CodeVersionMismatch:
		return 4
	case CodeAmbiguousMatch:
		return 5
	case CodeNotFound:
		return 6
	case CodeConstraintViolation:
		return 7
	case CodeQuery:
		return 8
	default:
		return 1
	}
}

// Fatal reports whether the store must not be used further after this code.
func (c Code) Fatal() bool {
	return c == CodeConnection || c == CodeSchema || c == CodeVersionMismatch
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrConnection          = &Error{Code: CodeConnection, Message: "store unavailable"}
	ErrSchema              = &Error{Code: CodeSchema, Message: "schema error"}
	ErrVersionMismatch     = &Error{Code: CodeVersionMismatch, Message: "schema version mismatch"}
	ErrAmbiguousMatch      = &Error{Code: CodeAmbiguousMatch, Message: "ambiguous match"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConstraintViolation = &Error{Code: CodeConstraintViolation, Message: "constraint violation"}
	ErrQuery               = &Error{Code: CodeQuery, Message: "query error"}
)

// Connection creates a connection error.
func Connection(msg string) *Error {
	return &Error{Code: CodeConnection, Message: msg}
}

// Connectionf creates a connection error with a formatted message.
func Connectionf(format string, args ...any) *Error {
	return &Error{Code: CodeConnection, Message: fmt.Sprintf(format, args...)}
}

// Schema creates a schema error.
func Schema(msg string) *Error {
	return &Error{Code: CodeSchema, Message: msg}
}

// Schemaf creates a schema error with a formatted message.
func Schemaf(format string, args ...any) *Error {
	return &Error{Code: CodeSchema, Message: fmt.Sprintf(format, args...)}
}

// VersionMismatch creates a version mismatch error for a store written by a
// newer program.
func VersionMismatch(stored, supported int) *Error {
	return &Error{
		Code:    CodeVersionMismatch,
		Message: fmt.Sprintf("store schema version %d is newer than supported version %d", stored, supported),
		Details: map[string]int{"stored": stored, "supported": supported},
	}
}

// AmbiguousMatch creates an ambiguous match error carrying the remaining candidates.
func AmbiguousMatch(msg string, candidates any) *Error {
	return &Error{Code: CodeAmbiguousMatch, Message: msg, Details: candidates}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// ConstraintViolation creates a constraint violation error.
func ConstraintViolation(msg string) *Error {
	return &Error{Code: CodeConstraintViolation, Message: msg}
}

// ConstraintViolationf creates a constraint violation error with a formatted message.
func ConstraintViolationf(format string, args ...any) *Error {
	return &Error{Code: CodeConstraintViolation, Message: fmt.Sprintf(format, args...)}
}

// Queryf creates a query error with a formatted message.
func Queryf(format string, args ...any) *Error {
	return &Error{Code: CodeQuery, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
