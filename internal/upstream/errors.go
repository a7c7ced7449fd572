package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired means the session could not be renewed and the user
	// must log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailable wraps transport failures and open-circuit rejections.
	ErrUnavailable = errors.New("upstream unavailable")
)

// tokenNotValidCode is the error code the API returns for expired tokens.
const tokenNotValidCode = "token_not_valid"

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// Code returns the "code" field of a JSON error body.
func (e *APIError) Code() string {
	return e.field("code")
}

// Message returns the human readable part of a JSON error body, taken from
// "error", "detail" or "message" in that order.
func (e *APIError) Message() string {
	for _, key := range []string{"error", "detail", "message"} {
		if v := e.field(key); v != "" {
			return v
		}
	}
	return ""
}

func (e *APIError) field(key string) string {
	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if s, ok := body[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
