package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/villarch/internal/errs"
	"github.com/deppfellow/villarch/internal/server"
)

// GlobalMiddlewares groups “global” middleware and the global error handler.
//
// Middleware functions read shared app dependencies (config, logger) from
// *server.Server.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo’s CORS middleware configured by the server config.
//
// Requests without an Origin header skip it entirely: otherwise it answers
// every OPTIONS request with 204 and the dispatch engine never gets to reject
// the method.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get(echo.HeaderOrigin) == ""
		},
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	})
}

// statusOf derives the final status of a request.
//
// When a handler returns an error, Echo has not written the final status yet;
// GlobalErrorHandler decides it later. Deriving it from the error type avoids
// logging status=200 for an error request.
// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
func statusOf(c echo.Context, status int, err error) int {
	if err == nil || c.Response().Committed {
		return status
	}

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	}

	return http.StatusInternalServerError
}

// RequestLogger returns Echo’s request logger middleware with a custom LogValuesFunc.
//
// It produces one “API” log line per request, with severity based on status,
// through the request-scoped logger so request_id and route fields are attached.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := statusOf(c, v.Status, v.Error)
			logger := GetLogger(c)

			// 5xx = server fault, 4xx = client fault.
			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover returns Echo’s panic recovery middleware.
//
// The dispatch engine recovers handler unit panics itself; this catches
// anything else so a single request can never take the process down.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Bytes("stack", stack).
				Msg("recovered from panic")

			// Returning err hands it to GlobalErrorHandler, which answers 500.
			return err
		},
	})
}

// Secure returns Echo’s secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error ends up here. It is translated into the {"error": "..."}
// envelope; the original error, with whatever internal detail it carries, is
// only logged. Nothing is written when the response is already committed, which
// is how a handler unit keeps exclusive ownership of a response it started.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		switch {
		case errors.As(err, &echoErr) && echoErr.Code == http.StatusNotFound:
			httpErr = errs.NewEndpointNotFoundError().WithCause(err)
		case errors.As(err, &echoErr) && echoErr.Code == http.StatusMethodNotAllowed:
			httpErr = errs.NewMethodNotAllowedError().WithCause(err)
		default:
			// Anything unclassified is a server fault, never echoed to the client.
			httpErr = errs.NewInternalServerError().WithCause(err)
		}
	}

	logger := GetLogger(c)

	var e *zerolog.Event
	if httpErr.Status >= http.StatusInternalServerError {
		e = logger.Error().Stack()
	} else {
		e = logger.Warn()
	}

	e.Err(originalErr).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Bool("committed", c.Response().Committed).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, httpErr)
}
