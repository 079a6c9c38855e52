package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewAuthFailed returns the uniform authentication failure. The message is
// deliberately identical for every failure cause so callers cannot probe
// which cascade step rejected the attempt.
func NewAuthFailed() error {
	return NewDomainError("AUTH_FAILED", "incorrect username or password", http.StatusUnauthorized, nil)
}

// NewInvalidCredential covers expired, forged and malformed session tokens.
func NewInvalidCredential() error {
	return NewDomainError("INVALID_CREDENTIAL", "invalid authentication credentials", http.StatusUnauthorized, nil)
}

// NewDirectoryUnavailable maps a directory network/protocol fault. The caller
// may retry; nothing is retried internally.
func NewDirectoryUnavailable(err error) error {
	return &DomainError{
		Code:       "DIRECTORY_UNAVAILABLE",
		Message:    "directory service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewDuplicateAccount reports a unique-constraint violation on account_number.
func NewDuplicateAccount(accountNumber string) error {
	return NewDomainError("DUPLICATE_ACCOUNT", "account already registered", http.StatusConflict,
		map[string]any{"account_number": accountNumber})
}

// NewAlreadyIssued reports the terminal business-rule rejection: the account
// has already received its free statement.
func NewAlreadyIssued(accountNumber string) error {
	return NewDomainError("ALREADY_ISSUED", "statement already issued for this account", http.StatusConflict,
		map[string]any{"account_number": accountNumber})
}

// NewStoreError wraps any other persistence fault, fatal for the request.
func NewStoreError(err error) error {
	return &DomainError{
		Code:       "STORE_ERROR",
		Message:    "storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
