// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, the system routes and the catch-all route
// that hands every other request to the dispatch engine.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/villarch/internal/handler"
	"github.com/deppfellow/villarch/internal/middleware"
	"github.com/deppfellow/villarch/internal/server"
)

// NewRouter builds the Echo instance serving s.
//
// Middleware order matters: the request id must exist before the context
// logger is built, and the New Relic transaction must exist before either the
// context logger or EnhanceTracing look for it.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, h)

	// Everything else is a /<resource>/<action> candidate.
	router.Any("/*", h.Dispatch.Dispatch)

	return router
}
