// Package httpserver exposes the operational HTTP surface: health probes and
// Prometheus metrics. It carries no application features.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthProbeTimeout = 5 * time.Second

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	echo         *echo.Echo
	port         string
	instanceID   string
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(port, instanceID string, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		port:         port,
		instanceID:   instanceID,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	e.GET("/healthz", srv.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return srv
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	return s.echo.Start(":" + s.port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.healthChecks))
	healthy := true
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = err.Error()
			healthy = false
		} else {
			checks[hc.Name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	return c.JSON(status, map[string]any{
		"status":   overall,
		"instance": s.instanceID,
		"uptime":   time.Since(s.startTime).Seconds(),
		"checks":   checks,
	})
}
