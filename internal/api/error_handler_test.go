package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/infrastructure/queue"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrInvalidIdentity, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrRecordNotFound, http.StatusNotFound},
		{domain.ErrRecordAlreadyExists, http.StatusConflict},
		{domain.ErrDuplicateInstruction, http.StatusConflict},
		{domain.ErrNameTooLong, http.StatusUnprocessableEntity},
		{domain.ErrAddressTagMismatch, http.StatusInternalServerError},
		{queue.ErrExecutorStopped, http.StatusServiceUnavailable},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		handler(fmt.Errorf("rename record: %w", tc.err), c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	var logs bytes.Buffer
	handler := NewHTTPErrorHandler(zerolog.New(&logs))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler(errors.New("dial tcp 10.0.0.1:6379: connection refused"), c)

	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("internal detail leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected cause to be logged, got %q", logs.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrRecordNotFound, c)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("committed response must not be rewritten, got %d", rec.Code)
	}
}
