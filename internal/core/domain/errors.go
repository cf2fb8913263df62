package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the backend rejected the request credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrNotAuthenticated indicates an operation needs an authenticated session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenInvalid indicates the bearer token is malformed
	ErrTokenInvalid = errors.New("token invalid")

	// ErrNoPendingEmail indicates a verification flow has no email to continue with
	ErrNoPendingEmail = errors.New("no pending email")

	// ErrStorage indicates the persisted session store failed
	ErrStorage = errors.New("session storage failure")
)

// APIError is the structured failure raised for every non-2xx backend response.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewAPIError creates an APIError, falling back to the status text when message is empty
func NewAPIError(status int, message string, data map[string]any) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: message, Data: data}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets errors.Is match the sentinel equivalent of the status code
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err carries a 401 from the backend
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
