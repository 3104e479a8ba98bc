//go:build linux || darwin || freebsd

package loader

import (
	"context"
	"net/http"
	"plugin"

	"github.com/pkg/errors"

	"github.com/deppfellow/villarch/internal/resolver"
)

// PluginSupported indicates whether Go plugins can be loaded on this platform.
func PluginSupported() bool { return true }

// Plugin loads handler units built with `go build -buildmode=plugin`.
//
// The Go runtime keeps every opened plugin for the life of the process, so
// reopening a location is cheap and always yields the same unit. Replacing a
// .so on disk therefore requires a restart.
type Plugin struct {
	symbol string
}

// NewPlugin creates a Plugin loader that looks up symbol in each unit.
func NewPlugin(symbol string) *Plugin {
	return &Plugin{symbol: symbol}
}

// Load opens the plugin at location.Path and returns its entry point.
func (p *Plugin) Load(ctx context.Context, location resolver.Location) (http.Handler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unit, err := plugin.Open(location.Path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "[%s]: %s", location.Path, err)
	}

	symbol, err := unit.Lookup(p.symbol)
	if err != nil {
		return nil, errors.Wrapf(ErrSymbolNotFound, "[%s] %s: %s", location.Path, p.symbol, err)
	}

	handler, ok := AsHandler(symbol)
	if !ok {
		return nil, errors.Wrapf(ErrNotCallable, "[%s] %s has type %T", location.Path, p.symbol, symbol)
	}

	return handler, nil
}
