// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-access/internal/auth"
	"github.com/iliyamo/user-access/internal/handler"
	"github.com/iliyamo/user-access/internal/middleware"
	"github.com/iliyamo/user-access/internal/model"
)

// Register mounts all routes. Unauthenticated auth endpoints sit behind the
// rate limiter; everything under the protected group runs Authenticate,
// which re-checks session liveness on every request. Role-gated routes add
// a static (section, permission) requirement on top.
func Register(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, v *auth.Validator, limit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	pub := e.Group("/v1/auth", limit)
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)
	pub.POST("/refresh", a.Refresh)

	prot := e.Group("/v1", middleware.Authenticate(v))
	prot.POST("/logout", a.Logout)
	prot.POST("/logout-all", a.LogoutAll)
	prot.GET("/me", a.Me)
	prot.PUT("/me", u.UpdateProfile)
	prot.PUT("/me/password", u.ChangePassword)

	// Administrative role management: reading grants needs users.read,
	// changing them needs users.admin.
	prot.GET("/users/:id/roles", u.GetRoles,
		middleware.RequireRole(model.SectionUsers, model.PermissionRead))
	prot.PUT("/users/:id/roles", u.SetRoles,
		middleware.RequireRole(model.SectionUsers, model.PermissionAdmin))
}
