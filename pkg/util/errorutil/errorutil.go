package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeDeadlineExpired   = "REOPEN_DEADLINE_EXPIRED"
	CodeReopenNotAllowed  = "REOPEN_NOT_ALLOWED"
	CodeInternal          = "INTERNAL_ERROR"
	CodeDependencyFailure = "DEPENDENCY_UNAVAILABLE"
)

// Sentinels for errors.Is checks; matching is by Code only.
var (
	ErrNotFound           = &DomainError{Code: CodeNotFound}
	ErrDeadlineExpired    = &DomainError{Code: CodeDeadlineExpired}
	ErrReopenUnauthorized = &DomainError{Code: CodeReopenNotAllowed}
	ErrValidation         = &DomainError{Code: CodeValidation}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewNotFound reports that the named resource does not resolve.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["resource"] = resource
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewDeadlineExpired reports a reopen attempt after the reopen window closed.
func NewDeadlineExpired(message string, details map[string]any) error {
	return NewDomainError(CodeDeadlineExpired, message, http.StatusUnprocessableEntity, details)
}

// NewReopenUnauthorized reports a reopen attempt by someone other than the original requester.
func NewReopenUnauthorized(message string) error {
	return NewDomainError(CodeReopenNotAllowed, message, http.StatusForbidden, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
