// Package domainerrors defines coded errors that cross layer boundaries.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these coded errors; the HTTP layer maps codes to status lines via
// ToHTTPStatus. Codes are stable strings so they can appear in JSON error
// envelopes without leaking internals.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. It carries a code for transport mapping and
// a human-readable message safe to return to callers.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
