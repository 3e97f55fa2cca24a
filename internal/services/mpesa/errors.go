package mpesa

import (
	"errors"
	"fmt"
)

// Client errors
var (
	ErrProviderUnavailable = errors.New("mpesa provider unavailable")
	ErrAccessToken         = errors.New("failed to fetch access token")
	ErrInvalidCredentials  = errors.New("invalid consumer credentials")
	ErrMalformedCallback   = errors.New("malformed callback payload")
)

// APIError is a non-2xx answer from Daraja. Body holds the decoded provider
// payload (errorCode, errorMessage, requestId) when it was JSON.
type APIError struct {
	StatusCode int
	Body       map[string]interface{}
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("mpesa api error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("mpesa api error %d", e.StatusCode)
}

// Message returns the provider's human readable error, if any.
func (e *APIError) Message() string {
	for _, key := range []string{"errorMessage", "ResponseDescription", "error_description"} {
		if v, ok := e.Body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Retryable reports whether the failure is on the provider side.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}
