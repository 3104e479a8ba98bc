// Package dispatch orchestrates a single request: resolve the handler unit,
// gate the method, load the unit and invoke it.
package dispatch

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/deppfellow/villarch/internal/errs"
	"github.com/deppfellow/villarch/internal/loader"
	"github.com/deppfellow/villarch/internal/middleware"
	"github.com/deppfellow/villarch/internal/resolver"
)

// preloadLimit bounds concurrent loads during Preload.
const preloadLimit = 8

var allowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
}

// AllowedMethods returns the methods the engine will dispatch.
func AllowedMethods() []string {
	methods := make([]string, len(allowedMethods))
	copy(methods, allowedMethods)
	return methods
}

// IsAllowedMethod reports whether method may reach a handler unit.
func IsAllowedMethod(method string) bool {
	for _, allowed := range allowedMethods {
		if method == allowed {
			return true
		}
	}
	return false
}

// Engine maps requests onto handler units.
//
// It holds no mutable state of its own and is safe for concurrent use.
type Engine struct {
	resolver *resolver.Resolver
	loader   loader.Loader
}

// New creates an Engine over r and l.
func New(r *resolver.Resolver, l loader.Loader) *Engine {
	return &Engine{
		resolver: r,
		loader:   l,
	}
}

// Dispatch is the echo handler for the catch-all route.
//
// Failures are returned as *errs.HTTPError for the global error handler to
// render. A unit that writes its own response (including its own 405) owns it.
func (e *Engine) Dispatch(c echo.Context) error {
	req := c.Request()

	location, err := e.resolver.Resolve(req.URL.EscapedPath())
	if err != nil {
		return resolveError(err)
	}

	route := location.Route
	l := middleware.GetLogger(c).With().
		Str("resource", route.Resource).
		Str("action", route.Action).
		Logger()
	middleware.SetLogger(c, &l)

	txn := newrelic.FromContext(req.Context())
	if txn != nil {
		txn.SetName(req.Method + " /" + route.String())
		txn.AddAttribute("handler.resource", route.Resource)
		txn.AddAttribute("handler.action", route.Action)
	}

	if !IsAllowedMethod(req.Method) {
		return errs.NewMethodNotAllowedError().
			WithCause(errors.Errorf("method %s not allowed for %s", req.Method, route))
	}

	h, err := e.load(req.Context(), txn, location)
	if err != nil {
		return errs.NewInternalServerError().
			WithCause(errors.WithMessagef(err, "load handler %s", location.Path))
	}

	l.Debug().Str("handler", location.Path).Msg("invoking handler")

	return e.invoke(c, h, route)
}

func (e *Engine) load(ctx context.Context, txn *newrelic.Transaction, location resolver.Location) (http.Handler, error) {
	if txn != nil {
		defer txn.StartSegment("handler.load").End()
	}

	return e.loader.Load(ctx, location)
}

// invoke runs the handler unit, turning a panic into an error.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
// Headers the unit set before panicking are dropped unless it already
// committed the response.
func (e *Engine) invoke(c echo.Context, h http.Handler, route resolver.Route) (err error) {
	header := c.Response().Header()
	before := header.Clone()

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if r == http.ErrAbortHandler {
			panic(r)
		}

		if !c.Response().Committed {
			for key := range header {
				delete(header, key)
			}
			for key, values := range before {
				header[key] = values
			}
		}

		err = errs.NewInternalServerError().
			WithCause(errors.Errorf("handler %s panicked: %v", route, r))
	}()

	h.ServeHTTP(c.Response(), c.Request())
	return nil
}

func resolveError(err error) *errs.HTTPError {
	switch {
	case errors.Is(err, resolver.ErrForbidden):
		return errs.NewForbiddenError().WithCause(err)
	case errors.Is(err, resolver.ErrHandlerNotFound):
		return errs.NewHandlerNotFoundError().WithCause(err)
	default:
		return errs.NewEndpointNotFoundError().WithCause(err)
	}
}

// Preload loads every handler unit found under the resolver base.
//
// Loads run concurrently. All failures are returned together; one failing
// unit does not stop the others from loading.
func (e *Engine) Preload(ctx context.Context) error {
	routes, err := e.resolver.Scan()
	if err != nil {
		return errors.Wrap(err, "scan handler directory")
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		result error
	)

	g.SetLimit(preloadLimit)

	for _, route := range routes {
		g.Go(func() error {
			location, err := e.resolver.ResolveRoute(route)
			if err == nil {
				_, err = e.loader.Load(ctx, location)
			}

			if err != nil {
				mu.Lock()
				result = multierr.Append(result, errors.WithMessagef(err, "preload %s", route))
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()
	return result
}
