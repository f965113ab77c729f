package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playground/userstats/internal/api/middleware"
	"github.com/playground/userstats/internal/core/ports"
)

// ctxSigner extracts the signer injected by the Auth middleware. A missing
// identity means the route was mounted without Auth; reject with 401 before
// any instruction is queued.
func ctxSigner(c echo.Context) (ports.Signer, error) {
	signer, _ := c.Get(middleware.SignerKey).(ports.Signer)
	if signer.Identity == "" {
		return ports.Signer{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return signer, nil
}

// idempotencyKey reads the optional Idempotency-Key header.
func idempotencyKey(c echo.Context) string {
	return c.Request().Header.Get("Idempotency-Key")
}
