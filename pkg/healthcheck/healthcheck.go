// Package healthcheck provides dependency health reporting for the
// health endpoint.
package healthcheck

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is a dependency health state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the result of probing one dependency.
type Check struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ms"`
}

// Checker probes one dependency.
type Checker interface {
	Check(ctx context.Context) Check
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) Check

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context) Check { return f(ctx) }

// Response is the aggregate health payload.
type Response struct {
	Status  Status  `json:"status"`
	Service string  `json:"service"`
	Version string  `json:"version"`
	Checks  []Check `json:"checks,omitempty"`
}

// HealthCheck aggregates registered dependency checkers.
type HealthCheck struct {
	service  string
	version  string
	logger   *zap.Logger
	mu       sync.RWMutex
	checkers map[string]Checker
}

// New creates a health check aggregator.
func New(service, version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		service:  service,
		version:  version,
		logger:   logger.Named("healthcheck"),
		checkers: make(map[string]Checker),
	}
}

// Register adds a named dependency checker.
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Check runs every registered checker. A degraded dependency degrades
// the aggregate; an unhealthy one makes it unhealthy.
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	resp := Response{
		Status:  StatusHealthy,
		Service: h.service,
		Version: h.version,
	}

	for name, checker := range checkers {
		start := time.Now()
		check := checker.Check(ctx)
		check.Name = name
		check.Duration = time.Since(start) / time.Millisecond
		resp.Checks = append(resp.Checks, check)

		switch check.Status {
		case StatusUnhealthy:
			resp.Status = StatusUnhealthy
			h.logger.Warn("Dependency unhealthy",
				zap.String("dependency", name),
				zap.String("message", check.Message),
			)
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

// HTTPStatus maps the aggregate status to a response code. Degraded
// still serves traffic.
func (r Response) HTTPStatus() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
