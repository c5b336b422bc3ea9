package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures crossing the service boundary
type ErrorKind string

const (
	KindUnauthenticated       ErrorKind = "unauthenticated"
	KindAuthenticationMissing ErrorKind = "authentication_missing"
	KindAuthenticationInvalid ErrorKind = "authentication_invalid"
	KindUpstream              ErrorKind = "upstream_error"
	KindNotFound              ErrorKind = "not_found"
	KindStorage               ErrorKind = "storage_error"
	KindTransport             ErrorKind = "transport_exception"
	KindBadRequest            ErrorKind = "bad_request"
)

var kindStatus = map[ErrorKind]int{
	KindUnauthenticated:       http.StatusUnauthorized,
	KindAuthenticationMissing: http.StatusForbidden,
	KindAuthenticationInvalid: http.StatusUnauthorized,
	KindUpstream:              http.StatusInternalServerError,
	KindNotFound:              http.StatusNotFound,
	KindStorage:               http.StatusInternalServerError,
	KindTransport:             http.StatusInternalServerError,
	KindBadRequest:            http.StatusBadRequest,
}

// Error is a classified failure with a message fit for the merchant
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int    // upstream HTTP status, for upstream errors
	Body    string // upstream error body, for upstream errors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error kind
func (e *Error) HTTPStatus() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrNotFound is returned by stores when a key or record is absent
var ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}

// KindOf returns the kind of a classified error, or "" for unclassified errors
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// StatusOf maps any error onto an HTTP status
func StatusOf(err error) int {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the merchant-facing message of an error
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
