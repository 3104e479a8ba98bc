package handler

import (
	"github.com/deppfellow/villarch/internal/server"
)

// Handler is the base handler type that holds shared application dependencies.
//
// It is embedded by concrete handlers (e.g. HealthHandler) so they can reach
// config, logger, resolver and loader via *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
//
// It returns the struct by value; it only holds a pointer to the Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}
