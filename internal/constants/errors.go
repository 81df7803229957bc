package constants

import "net/http"

// APIError represents a standardized API error with code, message, and HTTP status.
// Use these predefined errors for consistent API responses across the application.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// WithMessage returns a copy of the APIError with a custom message.
// Useful for validation errors or other dynamic messages.
func (e APIError) WithMessage(message string) APIError {
	return APIError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
	}
}

// Common errors - shared across multiple modules
var (
	ErrInvalidRequestBody = APIError{
		Code:    CodeInvalidRequest,
		Message: MsgInvalidRequestBody,
		Status:  http.StatusBadRequest,
	}
	ErrInternalError = APIError{
		Code:    CodeInternalError,
		Message: MsgInternalError,
		Status:  http.StatusInternalServerError,
	}
	ErrUnauthorized = APIError{
		Code:    CodeUnauthorized,
		Message: MsgUnauthorized,
		Status:  http.StatusUnauthorized,
	}
	ErrRateLimited = APIError{
		Code:    CodeRateLimited,
		Message: MsgRateLimited,
		Status:  http.StatusTooManyRequests,
	}
)

// Shortener-specific errors
var (
	ErrInvalidURL = APIError{
		Code:    CodeInvalidURL,
		Message: MsgInvalidURL,
		Status:  http.StatusBadRequest,
	}
	ErrInvalidAlias = APIError{
		Code:    CodeInvalidAlias,
		Message: MsgInvalidAlias,
		Status:  http.StatusBadRequest,
	}
	ErrReservedAlias = APIError{
		Code:    CodeReservedAlias,
		Message: MsgReservedAlias,
		Status:  http.StatusConflict,
	}
	ErrAliasTaken = APIError{
		Code:    CodeAliasTaken,
		Message: MsgAliasTaken,
		Status:  http.StatusConflict,
	}
	ErrAllocationExhausted = APIError{
		Code:    CodeAllocationExhausted,
		Message: MsgAllocationExhausted,
		Status:  http.StatusServiceUnavailable,
	}
	ErrLinkNotFound = APIError{
		Code:    CodeLinkNotFound,
		Message: MsgLinkNotFound,
		Status:  http.StatusNotFound,
	}
	ErrLinkInactive = APIError{
		Code:    CodeLinkInactive,
		Message: MsgLinkInactive,
		Status:  http.StatusForbidden,
	}
	ErrLinkExpired = APIError{
		Code:    CodeLinkExpired,
		Message: MsgLinkExpired,
		Status:  http.StatusGone,
	}
)

// Auth-specific errors
var (
	ErrInvalidCredentials = APIError{
		Code:    CodeInvalidCredentials,
		Message: MsgInvalidCredentials,
		Status:  http.StatusUnauthorized,
	}
	ErrAdminExists = APIError{
		Code:    CodeAdminExists,
		Message: MsgAdminExists,
		Status:  http.StatusConflict,
	}
	ErrEmailTaken = APIError{
		Code:    CodeEmailTaken,
		Message: MsgEmailTaken,
		Status:  http.StatusConflict,
	}
)
