// Package loader turns resolved handler locations into callable handler units.
//
// A handler unit exposes exactly one entry point that behaves like an
// http.Handler. Loaders are consulted on every dispatch; wrap one in a Cache to
// keep units for the life of the process.
package loader

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/deppfellow/villarch/internal/resolver"
)

var (
	// ErrOpen means the handler unit at a location could not be opened.
	ErrOpen = errors.New("unable to open handler unit")

	// ErrSymbolNotFound means the unit does not export the entry point.
	ErrSymbolNotFound = errors.New("handler entry point not found")

	// ErrNotCallable means the entry point exists but cannot serve requests.
	ErrNotCallable = errors.New("handler entry point is not callable")

	// ErrUnsupported means this platform cannot load handler units at all.
	ErrUnsupported = errors.New("handler units are not supported on this platform")
)

// Loader loads the handler unit found at a resolved location.
type Loader interface {
	Load(ctx context.Context, location resolver.Location) (http.Handler, error)
}

// LoaderFunc is a function type that implements Loader.
type LoaderFunc func(context.Context, resolver.Location) (http.Handler, error)

// Load calls lf(ctx, location).
func (lf LoaderFunc) Load(ctx context.Context, location resolver.Location) (http.Handler, error) {
	return lf(ctx, location)
}

// AsHandler converts an exported entry point into an http.Handler.
//
// Accepted shapes are a func(http.ResponseWriter, *http.Request), a pointer to
// a variable of that type (which is what plugin lookups of variables return),
// *http.HandlerFunc, *http.Handler and any other non-nil http.Handler. The
// second return is false for nil values and anything else.
func AsHandler(symbol interface{}) (http.Handler, bool) {
	switch s := symbol.(type) {
	case func(http.ResponseWriter, *http.Request):
		if s == nil {
			return nil, false
		}
		return http.HandlerFunc(s), true

	case http.HandlerFunc:
		if s == nil {
			return nil, false
		}
		return s, true

	case *func(http.ResponseWriter, *http.Request):
		if s == nil || *s == nil {
			return nil, false
		}
		return http.HandlerFunc(*s), true

	// *http.HandlerFunc also satisfies http.Handler, so it must be matched
	// before the generic case to catch a nil func behind the pointer.
	case *http.HandlerFunc:
		if s == nil || *s == nil {
			return nil, false
		}
		return *s, true

	case *http.Handler:
		if s == nil || isNil(*s) {
			return nil, false
		}
		return *s, true

	case http.Handler:
		if isNil(s) {
			return nil, false
		}
		return s, true
	}

	return nil, false
}

// isNil catches interfaces holding typed nil pointers, maps and funcs.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}

	return false
}
