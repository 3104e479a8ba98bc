//go:build !linux && !darwin && !freebsd

package loader

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/deppfellow/villarch/internal/resolver"
)

// PluginSupported indicates whether Go plugins can be loaded on this platform.
func PluginSupported() bool { return false }

// Plugin loads handler units built with `go build -buildmode=plugin`.
type Plugin struct {
	symbol string
}

// NewPlugin creates a Plugin loader that looks up symbol in each unit.
func NewPlugin(symbol string) *Plugin {
	return &Plugin{symbol: symbol}
}

// Load always fails: plugins are not supported on this platform.
func (p *Plugin) Load(_ context.Context, location resolver.Location) (http.Handler, error) {
	return nil, errors.Wrapf(ErrUnsupported, "[%s]", location.Path)
}
