package wikitext

import (
	"errors"
	"fmt"
)

// ErrorCode classifies node construction and conversion failures for
// programmatic handling.
type ErrorCode string

const (
	// CodeInvalidTitle indicates a nil, external, or otherwise unusable title.
	CodeInvalidTitle ErrorCode = "INVALID_TITLE"

	// CodeWrongNamespace indicates a title in the wrong namespace for the
	// requested node kind (e.g. a non-File title for a FileWikilink).
	CodeWrongNamespace ErrorCode = "WRONG_NAMESPACE"

	// CodeInvalidHook indicates a candidate hook string that failed
	// verification against the site's hook table.
	CodeInvalidHook ErrorCode = "INVALID_HOOK"

	// CodeBadInitializer indicates a scanner-supplied initializer record whose
	// raw and clean title text cannot be reconciled.
	CodeBadInitializer ErrorCode = "BAD_INITIALIZER"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrInvalidTitle matches any CodeInvalidTitle error.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrWrongNamespace matches any CodeWrongNamespace error.
	ErrWrongNamespace = errors.New("wrong namespace")

	// ErrInvalidHook matches any CodeInvalidHook error.
	ErrInvalidHook = errors.New("invalid parser function hook")

	// ErrBadInitializer matches any CodeBadInitializer error.
	ErrBadInitializer = errors.New("bad initializer")
)

// NodeError is a structured construction or conversion failure. Mutation-time
// policy outcomes (overwrite refused, reference key missing) never produce a
// NodeError; those return booleans so bulk edits can continue past individual
// failures.
type NodeError struct {
	// Code is the machine-readable failure category.
	Code ErrorCode
	// Op names the constructor or conversion that failed.
	Op string
	// Detail describes the failure.
	Detail string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a human-readable error message.
func (e *NodeError) Error() string {
	msg := fmt.Sprintf("wikitext: %s: [%s]", e.Op, e.Code)
	if e.Detail != "" {
		msg += " " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *NodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's code sentinel.
func (e *NodeError) Is(target error) bool {
	switch target {
	case ErrInvalidTitle:
		return e.Code == CodeInvalidTitle
	case ErrWrongNamespace:
		return e.Code == CodeWrongNamespace
	case ErrInvalidHook:
		return e.Code == CodeInvalidHook
	case ErrBadInitializer:
		return e.Code == CodeBadInitializer
	}
	return false
}

func newNodeError(code ErrorCode, op, detail string) *NodeError {
	return &NodeError{Code: code, Op: op, Detail: detail}
}
