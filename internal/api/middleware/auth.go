package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/playground/userstats/internal/core/ports"
)

// SignerKey is the echo context key holding the caller's ports.Signer.
const SignerKey = "signer"

// TokenVerifier turns a bearer token into the signer it proves.
type TokenVerifier interface {
	Verify(token string) (ports.Signer, error)
}

// Auth validates the bearer token and injects the signer into context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			signer, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(SignerKey, signer)
			return next(c)
		}
	}
}
