// Package rest provides an HTTP/JSON adapter over the sitenav services,
// serving the web client and the browser extension.
package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("rest: chat service is required")

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// classify maps an error to its HTTP status and a stable kind string.
// Order matters: a persist failure caused by a timeout reports the timeout.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired),
		errors.Is(err, domain.ErrAuthExpired),
		errors.Is(err, domain.ErrAuthInvalid):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_url"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrGatewayTimeout):
		return http.StatusGatewayTimeout, "gateway_timeout"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, "llm_unavailable"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented, "not_implemented"
	case errors.Is(err, domain.ErrPersist):
		return http.StatusInternalServerError, "persist"
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway, "analysis_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// handleError is the echo error handler. Domain errors are classified;
// echo's own errors (routing, binding) keep their status.
func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   errorResponse
	)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		body = errorResponse{Error: http.StatusText(status), Kind: "http"}
		if msg, ok := httpErr.Message.(string); ok {
			body.Error = msg
		}
	} else {
		status, body.Kind = classify(err)
		body.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Warn("Writing error response: %v", err)
	}
}
