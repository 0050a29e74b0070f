package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-access/internal/auth"
	"github.com/iliyamo/user-access/internal/model"
)

// RequireRole returns middleware enforcing that the authenticated identity
// holds at least the given permission on the given section. Routes declare
// their requirement statically at registration time; the comparison is by
// rank, so a higher grant satisfies a lower requirement.
//
// Passing a zero permission defaults the requirement to read. It assumes
// Authenticate ran earlier in the chain.
func RequireRole(section model.RoleSection, permission model.RolePermission) echo.MiddlewareFunc {
	req := &auth.Requirement{Section: section, Permission: permission}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			if err := auth.Authorize(id, req); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
