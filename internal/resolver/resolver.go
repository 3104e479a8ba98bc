// Package resolver maps request paths onto handler units on disk.
//
// A request path /<resource>/<action>[/...] resolves to the file
// <base>/<resource>/<action><ext>. Resolution is purely a filesystem metadata
// check: nothing is opened, loaded or written.
//
// The handler tree is trusted, operator-controlled content. The resolver
// rejects lexical escapes from the base directory, but a file may still change
// between the Stat performed here and the subsequent load, and symlinks inside
// the tree are followed. Both are accepted on that assumption.
package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrEndpointNotFound means the path has fewer than two non-empty segments
	// (or a segment that cannot be decoded), so it names no route at all.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrForbidden means the route would resolve outside the base directory.
	ErrForbidden = errors.New("handler location escapes base directory")

	// ErrHandlerNotFound means the route is well formed but no regular file
	// exists at its location.
	ErrHandlerNotFound = errors.New("handler not found")
)

// Route is the Route Identity of a request: its first two path segments.
type Route struct {
	Resource string
	Action   string
}

// String returns the route in path form, e.g. "users/list".
func (r Route) String() string {
	return r.Resource + "/" + r.Action
}

// Location is a resolved handler unit: the route it serves and the absolute
// path of the file that implements it.
type Location struct {
	Route Route
	Path  string
}

// ParseRoute extracts the Route Identity from an escaped URL path.
//
// The path is split on "/" before each segment is unescaped, so an encoded
// slash (%2F) stays inside its segment. Empty segments are dropped and
// segments past the second are ignored.
func ParseRoute(path string) (Route, error) {
	segments := make([]string, 0, 2)
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}

		segments = append(segments, segment)
		if len(segments) == 2 {
			break
		}
	}

	if len(segments) < 2 {
		return Route{}, ErrEndpointNotFound
	}

	resource, err := url.PathUnescape(segments[0])
	if err != nil {
		return Route{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, err)
	}

	action, err := url.PathUnescape(segments[1])
	if err != nil {
		return Route{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, err)
	}

	return Route{Resource: resource, Action: action}, nil
}

// Resolver resolves routes against a fixed base directory.
//
// A Resolver is immutable after New and safe for concurrent use.
type Resolver struct {
	fs   afero.Fs
	base string
	ext  string
}

// New creates a Resolver over fs rooted at base. Handler files carry ext,
// which must start with a dot (".so").
//
// base is made absolute and cleaned; it is not required to exist yet.
func New(fs afero.Fs, base, ext string) (*Resolver, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return nil, fmt.Errorf("invalid handler extension %q", ext)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve handler directory %q: %w", base, err)
	}

	return &Resolver{
		fs:   fs,
		base: abs,
		ext:  ext,
	}, nil
}

// Base returns the absolute handler base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Extension returns the handler file extension.
func (r *Resolver) Extension() string {
	return r.ext
}

// Check verifies that the base directory exists and is a directory.
func (r *Resolver) Check() error {
	info, err := r.fs.Stat(r.base)
	if err != nil {
		return fmt.Errorf("handler directory %s: %w", r.base, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("handler directory %s is not a directory", r.base)
	}

	return nil
}

// Resolve maps an escaped request path to the handler unit that serves it.
//
// The returned error wraps ErrEndpointNotFound, ErrForbidden or
// ErrHandlerNotFound. Containment is checked before existence, so an escaping
// route reports ErrForbidden whether or not its target exists.
func (r *Resolver) Resolve(path string) (Location, error) {
	route, err := ParseRoute(path)
	if err != nil {
		return Location{}, err
	}

	return r.ResolveRoute(route)
}

// ResolveRoute is Resolve for an already parsed Route.
func (r *Resolver) ResolveRoute(route Route) (Location, error) {
	// Join cleans the result, which collapses "." and ".." lexically.
	candidate := filepath.Join(r.base, route.Resource, route.Action+r.ext)
	if !r.contains(candidate) {
		return Location{}, fmt.Errorf("%w: %s", ErrForbidden, route)
	}

	info, err := r.fs.Stat(candidate)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %s", ErrHandlerNotFound, err)
	}

	if !info.Mode().IsRegular() {
		return Location{}, fmt.Errorf("%w: %s is not a regular file", ErrHandlerNotFound, candidate)
	}

	return Location{Route: route, Path: candidate}, nil
}

// contains reports whether candidate is a strict descendant of the base.
func (r *Resolver) contains(candidate string) bool {
	rel, err := filepath.Rel(r.base, candidate)
	if err != nil {
		return false
	}

	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}

	return !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
