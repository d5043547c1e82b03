// Package apperror defines the error kinds shared by the auth and risk
// packages and maps each kind to one stable HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is an unexpected failure.
	Internal Kind = iota
	// ConfigurationError means a required secret or hash is missing or invalid.
	ConfigurationError
	// AuthenticationFailure covers bad credentials and invalid, expired or tampered tokens.
	AuthenticationFailure
	// ValidationError means the request payload was rejected at the boundary.
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration_error"
	case AuthenticationFailure:
		return "authentication_failure"
	case ValidationError:
		return "validation_error"
	default:
		return "internal_error"
	}
}

// AppError carries a kind, a caller-facing message and an optional cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case AuthenticationFailure:
		return http.StatusUnauthorized
	case ValidationError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewConfigError(message string, err error) *AppError {
	return New(ConfigurationError, message, err)
}

func NewAuthError(message string, err error) *AppError {
	return New(AuthenticationFailure, message, err)
}

func NewValidationError(message string, err error) *AppError {
	return New(ValidationError, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return New(Internal, message, err)
}

// FromError extracts an *AppError anywhere in the chain of err.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries an *AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := FromError(err)
	return ok && ae.Kind == kind
}
