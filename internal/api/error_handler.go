package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/infrastructure/queue"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidIdentity):
		return http.StatusBadRequest, "invalid owner identity"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "signer does not control owner"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, domain.ErrRecordAlreadyExists):
		return http.StatusConflict, "record already exists"
	case errors.Is(err, domain.ErrDuplicateInstruction):
		return http.StatusConflict, "duplicate instruction"
	case errors.Is(err, domain.ErrNameTooLong):
		return http.StatusUnprocessableEntity, fmt.Sprintf("name exceeds %d bytes", domain.MaxNameLen)
	case errors.Is(err, queue.ErrExecutorStopped):
		return http.StatusServiceUnavailable, "service shutting down"
	}

	// A tag mismatch is a storage integrity failure, never a caller error.
	if errors.Is(err, domain.ErrAddressTagMismatch) {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("record failed derivation check")
		return http.StatusInternalServerError, "record failed integrity check"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
