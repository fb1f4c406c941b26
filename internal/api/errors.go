package api

import (
	"errors"
	"net/http"

	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeProviderBlocked = "PROVIDER_BLOCKED"
	ErrCodeProviderTimeout = "PROVIDER_TIMEOUT"
)

// Standard errors
var (
	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrAddressExists = &Error{
		Code:    ErrCodeConflict,
		Message: "Address is already monitored",
		Status:  http.StatusConflict,
	}

	ErrIdentityAddress = &Error{
		Code:    ErrCodeForbidden,
		Message: "The account's own address cannot be removed from monitoring",
		Status:  http.StatusForbidden,
	}

	ErrInternal = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

// badRequest builds a 400 error with a specific message.
func badRequest(msg string) *Error {
	return &Error{Code: ErrCodeBadRequest, Message: msg, Status: http.StatusBadRequest}
}

// mapError converts engine and storage errors to API errors. Provider error
// kinds carry through to meaningful statuses: blocked means the provider is
// refusing automated access (503), rate limited maps to 429, and a provider
// timeout maps to 504.
func mapError(err error) *Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return ErrAddressExists
	case errors.Is(err, storage.ErrIdentityAddress):
		return ErrIdentityAddress
	}

	switch provider.KindOf(err) {
	case provider.KindBlocked:
		return &Error{
			Code:    ErrCodeProviderBlocked,
			Message: "Breach data provider is refusing automated access",
			Status:  http.StatusServiceUnavailable,
		}
	case provider.KindRateLimited:
		return &Error{
			Code:    ErrCodeRateLimited,
			Message: "Breach data provider rate limit reached",
			Status:  http.StatusTooManyRequests,
		}
	case provider.KindTimeout:
		return &Error{
			Code:    ErrCodeProviderTimeout,
			Message: "Breach data provider timed out",
			Status:  http.StatusGatewayTimeout,
		}
	case provider.KindServerError, provider.KindNetwork, provider.KindMalformed:
		return &Error{
			Code:    ErrCodeInternalError,
			Message: "Breach data provider is unavailable",
			Status:  http.StatusBadGateway,
		}
	}

	return ErrInternal
}
