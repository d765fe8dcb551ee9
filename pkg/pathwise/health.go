package pathwise

import (
	"context"
	"fmt"
	"time"

	healthuc "github.com/kailas-cloud/pathwise/internal/usecase/health"
)

// HealthState is the aggregated state: "ok", "degraded" or "error".
type HealthState string

// Aggregated states.
const (
	HealthOK       HealthState = HealthState(healthuc.Healthy)
	HealthDegraded HealthState = HealthState(healthuc.Degraded)
	HealthError    HealthState = HealthState(healthuc.Unhealthy)
)

// Components that may appear in HealthStatus.Checks. The store is reported only
// with WithRedis, the completion provider only when it supports health checks.
const (
	ComponentStore      = healthuc.ComponentDatabase
	ComponentCompletion = healthuc.ComponentCompletion
)

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status HealthState
	Checks map[string]string // component → "ok"/"error"
}

// Healthy reports whether every checked component passed.
func (h HealthStatus) Healthy() bool { return h.Status == HealthOK }

// Failing lists the components whose check failed.
func (h HealthStatus) Failing() []string {
	var out []string
	for name, res := range h.Checks {
		if res != string(healthuc.CheckOK) {
			out = append(out, name)
		}
	}
	return out
}

// Health probes the shared store and the completion provider concurrently,
// each bounded by a short timeout. A client with neither reports HealthOK.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	h := HealthStatus{Status: HealthState(report.Status), Checks: checks}

	var err error
	if !h.Healthy() {
		err = fmt.Errorf("health %s: failing %v", h.Status, h.Failing())
	}
	c.obs.observe("health", start, err)
	return h
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
