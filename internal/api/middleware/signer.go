package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/ports"
)

// RequireSigner rejects tokens that identify a caller without proving control
// of its key. It must run after Auth.
func RequireSigner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			signer, _ := c.Get(SignerKey).(ports.Signer)
			if !signer.IsSigner {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}
