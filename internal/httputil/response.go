// Package httputil writes the JSON error bodies shared by every handler.
package httputil

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/zkgate/internal/errors"
)

// ErrorResponse is the body of every non-2xx response. Code is only set for
// authorization denials.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// codedError is implemented by errors that carry a reason code for clients.
type codedError interface {
	error
	Code() string
}

type errorMapping struct {
	target  error
	status  int
	name    string
	message string
}

// errorMappings is checked in order; the first sentinel found in the chain wins.
// An empty message means the error text itself is safe to return.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrDispatch, http.StatusBadGateway, "dispatch_failed", "The authorized action could not be completed"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "A backing service is unavailable, retry later"},
}

func responseFor(err error) (int, ErrorResponse) {
	var coded codedError
	if apperrors.Is(err, apperrors.ErrForbidden) && apperrors.As(err, &coded) {
		// Denials expose the reason code and nothing else.
		return http.StatusForbidden, ErrorResponse{Error: "denied", Code: coded.Code()}
	}

	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		return m.status, ErrorResponse{Error: m.name, Message: msg}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	}
}

// HandleErrorGin maps err to a status code and writes the JSON body. The full error
// chain is logged; 5xx at error level, everything else at info.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := responseFor(err)

	if logger != nil {
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		ctx := context.Background()
		if c.Request != nil {
			ctx = c.Request.Context()
		}
		logger.Log(ctx, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.String("reason", body.Code),
			slog.Any("error", err),
		)
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="zkgate"`)
	}
	c.JSON(status, body)
}

// HandleBadRequestGin writes a 400 for bodies that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", err, logger)
}

// HandleValidationErrorGin writes a 422 for bodies that decoded but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", err, logger)
}

func writeClientError(c *gin.Context, status int, name string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected request body", slog.String("error_code", name), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: name, Message: err.Error()})
}
