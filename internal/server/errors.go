package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/upstream"
	"github.com/vyrodovalexey/statportal/internal/util"
)

// errLoginRequired rejects anonymous requests to member-only routes.
var errLoginRequired = errors.New("login required")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	LoginRequired bool              `json:"login_required,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// statusFor maps an error to the response status.
func statusFor(err error) int {
	var verr *util.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, upstream.ErrSessionExpired), errors.Is(err, errLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, util.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &verr), errors.Is(err, util.ErrInvalidInput), errors.Is(err, util.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrMalformedPayload):
		return http.StatusBadGateway
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch status := upstream.StatusOf(err); {
	case status == 0:
		return http.StatusInternalServerError
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return status
	default:
		return http.StatusBadGateway
	}
}

// messageFor returns the client-facing message of err. Upstream client
// errors pass their own message through.
func messageFor(err error, status int) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && status < http.StatusInternalServerError {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	switch status {
	case http.StatusInternalServerError:
		return "An unexpected error occurred"
	case http.StatusBadGateway:
		return "The statistics service returned an invalid response"
	case http.StatusServiceUnavailable:
		return "The statistics service is unavailable"
	case http.StatusUnauthorized:
		if errors.Is(err, upstream.ErrSessionExpired) {
			return "Session expired, please log in again"
		}
	}
	return err.Error()
}

// respondError writes err as JSON and records it on the gin context.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{
		Error:   http.StatusText(status),
		Message: messageFor(err, status),
	}

	var verr *util.ValidationError
	if errors.As(err, &verr) {
		body.Message = verr.Message
		body.Fields = verr.Fields
	}
	if status == http.StatusUnauthorized {
		body.LoginRequired = true
	}
	if errors.Is(err, upstream.ErrSessionExpired) {
		s.clearSessionCookie(c)
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithContext(c.Request.Context()).Error("request failed",
			observability.String("path", c.Request.URL.Path),
			observability.Int("status", status),
			observability.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
