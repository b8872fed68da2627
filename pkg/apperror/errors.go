package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its message
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindInternal           Kind = "internal"
	KindInputValidation    Kind = "input_validation"
	KindDuplicateClient    Kind = "duplicate_client"
	KindMissingField       Kind = "missing_field"
	KindRender             Kind = "render"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidToken       Kind = "invalid_token"
	KindTokenExpired       Kind = "token_expired"
	KindStoreWrite         Kind = "store_write"
	KindTooManyRequests    Kind = "too_many_requests"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is works against the sentinels below
// even when the message or cause differ.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Kind: KindInvalidCredentials, Message: "Invalid username or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Kind: KindTokenExpired, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Kind: KindInvalidToken, Message: "Invalid token"}
	ErrInputValidation    = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInputValidation, Message: "Validation failed"}
	ErrDuplicateClient    = &AppError{Code: http.StatusConflict, Kind: KindDuplicateClient, Message: "Client already exists"}
	ErrMissingField       = &AppError{Code: http.StatusInternalServerError, Kind: KindMissingField, Message: "Template field missing"}
	ErrRender             = &AppError{Code: http.StatusBadGateway, Kind: KindRender, Message: "Failed to render PDF"}
	ErrStoreWrite         = &AppError{Code: http.StatusInternalServerError, Kind: KindStoreWrite, Message: "Failed to persist data"}
	ErrTooManyRequests    = &AppError{Code: http.StatusTooManyRequests, Kind: KindTooManyRequests, Message: "Rate limit exceeded. Please try again later."}
)

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInputValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewDuplicateClientError reports a (user, name) pair that is already taken
func NewDuplicateClientError(name string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindDuplicateClient,
		Message: fmt.Sprintf("Client %q already exists", name),
	}
}

// NewMissingFieldError reports a template placeholder with no value
func NewMissingFieldError(field string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindMissingField,
		Message: fmt.Sprintf("Template field %q is missing", field),
		Errors:  []FieldError{{Field: field, Message: "missing"}},
	}
}

// NewRenderError wraps a PDF generation failure
func NewRenderError(err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindRender,
		Message: "Failed to render PDF",
		Err:     err,
	}
}

// NewStoreWriteError wraps a persistence failure
func NewStoreWriteError(err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindStoreWrite,
		Message: "Failed to persist data",
		Err:     err,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
