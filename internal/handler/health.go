// Package handler contains the HTTP boundary layer: it binds requests,
// calls into the auth core and repositories, and maps error kinds to
// status codes (401/403/404/409).
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
