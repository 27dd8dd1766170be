package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Billing rule errors. Recoverable at the request boundary: the caller
// fixes the input and retries.
var (
	ErrInvoiceLocked          = &AppError{Code: http.StatusConflict, Message: "Invoice is fully paid and can no longer be edited"}
	ErrClientLockedByInvoices = &AppError{Code: http.StatusConflict, Message: "Client cannot be deleted while invoices reference them"}
	ErrOverpaymentNotAllowed  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Payment exceeds the outstanding balance"}
	ErrInvalidPaymentAmount   = &AppError{Code: http.StatusUnprocessableEntity, Message: "Payment amount must be greater than zero"}
	ErrDuplicateInvoiceNumber = &AppError{Code: http.StatusConflict, Message: "Invoice number was already taken, please retry"}
	ErrConcurrentModification = &AppError{Code: http.StatusConflict, Message: "Invoice was modified by another request, please retry"}
	ErrNoLineItems            = &AppError{Code: http.StatusUnprocessableEntity, Message: "Invoice must have at least one line item"}
	ErrNegativeTotal          = &AppError{Code: http.StatusUnprocessableEntity, Message: "Invoice total cannot be negative"}
	ErrProjectHasPaidInvoices = &AppError{Code: http.StatusConflict, Message: "Project cannot be cancelled while its invoices have payments"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewUnprocessableEntityError creates an unprocessable entity error with a custom message
func NewUnprocessableEntityError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
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
		Message: err.Error(),
	}
}
