package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/allin/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type storeStatus struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

type healthResponse struct {
	Status      string            `json:"status"`
	Store       storeStatus       `json:"store"`
	Checks      map[string]string `json:"checks,omitempty"`
	FailedCheck string            `json:"failed_check,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

// handleLiveness never touches the store; a full disk must not get the
// process restarted.
func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

// runHealthChecks runs the checks in order and stops at the first failure.
func (s *Server) runHealthChecks(c echo.Context, ctx context.Context) error {
	response := healthResponse{
		Status: "ready",
		Store: storeStatus{
			Backend: s.config.StoreBackend,
			Path:    s.config.StorePath(),
		},
		Checks: make(map[string]string, len(s.healthChecks)),
	}
	code := http.StatusOK

	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			slog.WarnContext(ctx, "Health check failed",
				"check", hc.Name, "path", c.Path(), "store", response.Store.Path, "error", err)

			response.Status = "unhealthy"
			response.Checks[hc.Name] = "failed"
			response.FailedCheck = hc.Name
			response.Error = err.Error()
			code = http.StatusServiceUnavailable
			break
		}
		response.Checks[hc.Name] = "ok"
	}

	if err := c.JSON(code, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
