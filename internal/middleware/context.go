package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/villarch/internal/logger"
	"github.com/deppfellow/villarch/internal/server"
)

// contextKey keeps values stored in context.Context private to this package.
type contextKey string

const (
	// LoggerKey is used as the key for storing the request-scoped logger.
	LoggerKey = "logger"

	loggerContextKey contextKey = LoggerKey
)

// ContextEnhancer enriches each request with a request-scoped logger carrying
// request_id, method, path, ip and, when New Relic is running, trace ids.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a new ContextEnhancer using the app Server container.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns an Echo middleware that stores the request logger in
// both the Echo context and the Go request context.
//
// It must run after RequestID.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// The route template is "/*" for every dispatched request, so the
			// concrete request path is what identifies it.
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			SetLogger(c, &contextLogger)
			return next(c)
		}
	}
}

// SetLogger replaces the request-scoped logger.
//
// Later stages use it to narrow the logger once they know more, e.g. the
// dispatch engine adding the resolved resource and action.
func SetLogger(c echo.Context, l *zerolog.Logger) {
	c.Set(LoggerKey, l)

	ctx := context.WithValue(c.Request().Context(), loggerContextKey, l)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetLogger retrieves the request-scoped logger from Echo context.
//
// If EnhanceContext middleware didn't run, it returns a no-op logger.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}

	l := zerolog.Nop()
	return &l
}

// LoggerFromContext retrieves the request-scoped logger from a Go context,
// for code that only sees the *http.Request (such as handler units).
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(loggerContextKey).(*zerolog.Logger); ok {
		return l
	}

	l := zerolog.Nop()
	return &l
}
