package httpapi

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Health statuses.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// Readiness and liveness statuses.
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// Component states reported by the health check.
const (
	componentAvailable    = "available"
	componentUnavailable  = "unavailable"
	componentUnconfigured = "unconfigured"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status         string            `json:"status"`
	Timestamp      time.Time         `json:"timestamp"`
	Services       map[string]string `json:"services"`
	Version        string            `json:"version"`
	ResponseTimeMS int64             `json:"response_time_ms"`
}

// ReadinessReport is the body of GET /ready.
type ReadinessReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ReadyAt   time.Time `json:"ready_at"`
	Reason    string    `json:"reason,omitempty"`
}

// LivenessReport is the body of GET /live.
type LivenessReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Process   string    `json:"process"`
}

// healthChecker pings every registered dependency in parallel.
// A nil PingFunc marks a dependency that is not configured.
type healthChecker struct {
	checks  map[string]PingFunc
	timeout time.Duration
	version string
	started time.Time
}

// ready reports whether every registered dependency answers its ping.
// The first dependency in name order that is not available is the reason.
func (h *healthChecker) ready(ctx context.Context) ReadinessReport {
	health := h.check(ctx)
	report := ReadinessReport{
		Status:    StatusReady,
		Timestamp: health.Timestamp,
		ReadyAt:   h.started,
	}

	names := make([]string, 0, len(health.Services))
	for name := range health.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if state := health.Services[name]; state != componentAvailable {
			report.Status = StatusNotReady
			report.Reason = name + " is " + state
			break
		}
	}
	return report
}

func (h *healthChecker) check(ctx context.Context) HealthReport {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	states := make([]string, len(names))
	// Plain errgroup, not WithContext: one failing ping must not cancel the rest.
	var g errgroup.Group
	for i, name := range names {
		ping := h.checks[name]
		if ping == nil {
			states[i] = componentUnconfigured
			continue
		}
		g.Go(func() error {
			if err := ping(ctx); err != nil {
				states[i] = componentUnavailable
				return nil
			}
			states[i] = componentAvailable
			return nil
		})
	}
	_ = g.Wait()

	report := HealthReport{
		Status:    StatusHealthy,
		Timestamp: start.UTC(),
		Services:  make(map[string]string, len(names)),
		Version:   h.version,
	}
	down := 0
	for i, name := range names {
		report.Services[name] = states[i]
		if states[i] != componentAvailable {
			report.Status = StatusDegraded
		}
		if states[i] == componentUnavailable {
			down++
		}
	}
	if len(names) > 0 && down == len(names) {
		report.Status = StatusUnavailable
	}
	report.ResponseTimeMS = time.Since(start).Milliseconds()
	return report
}
