// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, the mapping from service errors to statuses, and thin wrappers
// for success bodies.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dianaantanyan/combinations-api/internal/http/middleware"
	"github.com/dianaantanyan/combinations-api/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"bad_request"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Invalid request"`
	// Individual validation failures, when there are any
	Details []string `json:"details,omitempty"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string, details ...string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Details:   details,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService maps a service error onto the HTTP error envelope. The cause
// is attached to the gin context so the access log records it; clients only
// see the safe message.
func failService(c *gin.Context, err error) {
	_ = c.Error(err)

	var se *services.Error
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		msg := "Invalid request"
		if errors.As(err, &se) && se.Msg != "" {
			msg = se.Msg
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
	case errors.Is(err, services.ErrResourceExhausted):
		c.Header("Retry-After", "1")
		fail(c, http.StatusServiceUnavailable, ErrCodeResourceExhausted, "server busy, retry later")
	case errors.Is(err, services.ErrResponseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "response not found")
	case errors.Is(err, services.ErrIdempotencyConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "Idempotency-Key was already used with a different request")
	case errors.Is(err, services.ErrPersistence):
		fail(c, http.StatusInternalServerError, ErrCodePersistenceFailed, "Database operation failed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
