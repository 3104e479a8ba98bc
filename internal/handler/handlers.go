package handler

import (
	"github.com/deppfellow/villarch/internal/dispatch"
	"github.com/deppfellow/villarch/internal/server"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// receives one object instead of many.
type Handlers struct {
	Health   *HealthHandler   // Health serves the /status endpoint.
	Dispatch *dispatch.Engine // Dispatch serves every other path from the handler directory.
}

// NewHandlers constructs the handler container from the application container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		Dispatch: dispatch.New(s.Resolver, s.Loader),
	}
}
