package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so Clone'd values compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// GenericRequestFailure is the message used when the server gives no readable reason.
const GenericRequestFailure = "request failed"

// Predefined errors for common scenarios.
var (
	ErrRequestFailed    = New("REQUEST_FAILED", http.StatusBadGateway, GenericRequestFailure)
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized     = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrNotLoggedIn      = New("NOT_LOGGED_IN", http.StatusUnauthorized, "not logged in")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnsupportedImage = New("UNSUPPORTED_IMAGE", http.StatusBadRequest, "file is not an image")
	ErrImageTooLarge    = New("IMAGE_TOO_LARGE", http.StatusRequestEntityTooLarge, "image exceeds size limit")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// RequestFailed builds the single error kind returned by the API client.
// status is the upstream HTTP status, or 0 when the request never got a response.
func RequestFailed(status int, message string) *Error {
	if message == "" {
		message = GenericRequestFailure
	}
	return &Error{Code: ErrRequestFailed.Code, Status: status, Message: message}
}

// IsRequestFailed reports whether err came from a failed API call.
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
