package schoolsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoRefreshToken reports an authorization failure with no stored
	// refresh token to recover with.
	ErrNoRefreshToken = errors.New("schoolsdk: no refresh token available")

	// ErrNotTelegramEnv reports an attempt to run a Telegram login flow
	// outside a Telegram host environment.
	ErrNotTelegramEnv = errors.New("schoolsdk: not running inside Telegram")

	// ErrTooManyAuthAttempts reports that the Mini-App auto-login attempt
	// budget is exhausted.
	ErrTooManyAuthAttempts = errors.New("schoolsdk: too many authentication attempts")
)

// APIError is a non-authorization failure reported by the platform API. The
// message comes from the platform envelope's errors list when present, so it
// is suitable for direct display.
type APIError struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int

	// Message is the first server-provided error string, or a generic
	// fallback derived from the status code.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.StatusCode, e.Message)
}

// AuthExpiredError marks the irrecoverable end of a session: the access
// token was rejected and the refresh either failed or was impossible. UI
// code is expected to swallow it silently (redirect to login, no error
// toast), which is why it is distinguishable from ordinary API errors.
type AuthExpiredError struct {
	// Reason is the underlying failure (refresh rejection, missing refresh
	// token). Kept for logs, not for display.
	Reason error
}

// Error implements the error interface.
func (e *AuthExpiredError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("authentication expired: %v", e.Reason)
	}
	return "authentication expired"
}

func (e *AuthExpiredError) Unwrap() error { return e.Reason }

// IsAuthExpired reports whether err is (or wraps) an AuthExpiredError.
func IsAuthExpired(err error) bool {
	var expired *AuthExpiredError
	return errors.As(err, &expired)
}

// parseErrorResponse converts a non-2xx platform response body into an
// *APIError, preferring the envelope's server-provided message.
func parseErrorResponse(statusCode int, body []byte) error {
	var envelope struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return &APIError{StatusCode: statusCode, Message: envelope.Errors[0]}
	}

	// Some endpoints fail outside the envelope shape.
	var plain struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &plain); err == nil {
		if plain.Detail != "" {
			return &APIError{StatusCode: statusCode, Message: plain.Detail}
		}
		if plain.Message != "" {
			return &APIError{StatusCode: statusCode, Message: plain.Message}
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
	}
}
