// Package middleware provides reusable HTTP middleware: bearer-token
// authentication, role gating and rate limiting.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-access/internal/auth"
)

// identityKey is the echo context key under which Authenticate stores the
// validated identity.
const identityKey = "identity"

// Authenticate returns middleware that validates the Bearer access token on
// every request. Validation includes the session-liveness check, so a token
// revoked by logout or logout-all is rejected here even though its
// signature is still valid. The resulting identity is stored in the request
// context for handlers and the role gate.
func Authenticate(v *auth.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			id, err := v.Validate(c.Request().Context(), raw, auth.TokenAccess)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidToken):
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				case errors.Is(err, auth.ErrSessionRevoked):
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session revoked or unknown"})
				default:
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
				}
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by Authenticate.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}
