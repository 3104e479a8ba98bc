package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/villarch/internal/handler"
)

// registerSystemRoutes registers endpoints the server answers itself.
//
// /status is a one-segment path, so it can never shadow a handler unit.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	// Health status endpoint (used by monitors and load balancers).
	r.Any("/status", h.Health.CheckHealth)
}
