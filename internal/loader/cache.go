package loader

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/deppfellow/villarch/internal/resolver"
)

// Cache memoizes another Loader by location path.
//
// Concurrent first loads of one location share a single call to the wrapped
// Loader. A successful load is stored once and never invalidated; failures are
// not stored, so the next request retries.
type Cache struct {
	next  Loader
	group singleflight.Group
	units sync.Map // location path -> http.Handler
}

// NewCache wraps next.
func NewCache(next Loader) *Cache {
	return &Cache{next: next}
}

// Load returns the cached unit for location, loading it on first use.
func (c *Cache) Load(ctx context.Context, location resolver.Location) (http.Handler, error) {
	if unit, ok := c.units.Load(location.Path); ok {
		return unit.(http.Handler), nil
	}

	unit, err, _ := c.group.Do(location.Path, func() (interface{}, error) {
		if unit, ok := c.units.Load(location.Path); ok {
			return unit, nil
		}

		// Shared by every waiter, so one caller going away must not fail the rest.
		handler, err := c.next.Load(context.WithoutCancel(ctx), location)
		if err != nil {
			return nil, err
		}

		c.units.Store(location.Path, handler)
		return handler, nil
	})
	if err != nil {
		return nil, err
	}

	return unit.(http.Handler), nil
}

// Len returns the number of cached units.
func (c *Cache) Len() int {
	n := 0
	c.units.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
