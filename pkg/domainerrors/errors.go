// Package domainerrors provides coded domain errors so transport layers can
// translate failures into responses without inspecting storage-layer detail.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks input that fails submission requirements.
	CodeValidation Code = "validation_failed"
	// CodeUnauthorized marks calls lacking a required caller identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks lookups for unknown reports, conversations or slugs.
	CodeNotFound Code = "not_found"
	// CodeConflict marks rejected operations such as self-conversations.
	CodeConflict Code = "conflict"
	// CodePersistence marks failed or unavailable store writes.
	CodePersistence Code = "persistence_failed"
	// CodeDelivery marks failed realtime publishes. Always non-fatal.
	CodeDelivery Code = "delivery_failed"
	// CodeInternal is the fallback for unclassified failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is safe to surface to callers;
// the wrapped error carries the internal cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// MessageOf returns the caller-safe message, or a generic one for
// unclassified errors so storage detail never leaks.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePersistence, CodeDelivery, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
