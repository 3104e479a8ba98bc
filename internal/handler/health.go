package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/villarch/internal/errs"
	"github.com/deppfellow/villarch/internal/loader"
	"github.com/deppfellow/villarch/internal/middleware"
	"github.com/deppfellow/villarch/internal/server"
)

// HealthHandler exposes a "system" endpoint that monitors and load balancers
// can use to verify the service is alive and has something to dispatch to.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns system health status and checks.
//
// Response includes:
// - overall status (healthy/unhealthy)
// - timestamp (UTC)
// - environment (from config)
// - checks map (handlers, loader)
//
// It returns 200 OK if all checks pass and 503 Service Unavailable otherwise.
// /status is mounted for every method so it can never fall through to the
// dispatch engine; anything but GET is answered like any other one-segment path.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	if c.Request().Method != http.MethodGet {
		return errs.NewEndpointNotFoundError()
	}

	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	// ---------------- Handler directory check --------------------------------
	scanStart := time.Now()

	routes, err := h.server.Resolver.Scan()
	if err == nil {
		err = h.server.Resolver.Check()
	}

	if err != nil {
		checks["handlers"] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": time.Since(scanStart).String(),
			"error":         "handler directory unavailable",
		}

		isHealthy = false

		logger.Error().
			Err(err).
			Str("dir", h.server.Resolver.Base()).
			Dur("response_time", time.Since(scanStart)).
			Msg("handler directory health check failed")

		h.recordFailure("handlers", map[string]interface{}{
			"response_time_ms": time.Since(scanStart).Milliseconds(),
			"error_message":    err.Error(),
		})
	} else {
		checks["handlers"] = map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(scanStart).String(),
			"routes":        len(routes),
		}

		logger.Debug().
			Int("routes", len(routes)).
			Dur("response_time", time.Since(scanStart)).
			Msg("handler directory health check passed")
	}

	// ---------------- Loader check -------------------------------------------
	// Without plugin support every dispatch ends in a load failure.
	if loader.PluginSupported() {
		checks["loader"] = map[string]interface{}{"status": "healthy"}
	} else {
		checks["loader"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  loader.ErrUnsupported.Error(),
		}

		isHealthy = false
		h.recordFailure("loader", nil)
	}

	// ---------------- Overall status + response ------------------------------
	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// recordFailure records a New Relic custom event for a failed check, if enabled.
func (h *HealthHandler) recordFailure(check string, attributes map[string]interface{}) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	event := map[string]interface{}{
		"check_type": check,
		"operation":  "health_check",
		"error_type": check + "_unhealthy",
	}
	for k, v := range attributes {
		event[k] = v
	}

	app.RecordCustomEvent("HealthCheckError", event)
}
