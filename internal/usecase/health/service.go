package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. The ledger keeps serving from memory.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name string
	fn   func(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	components []component
	timeout    time.Duration
}

// New creates a Service. provider can be nil when no completion provider is configured.
func New(db DBPinger, provider ProviderChecker) *Service {
	s := &Service{timeout: DefaultCheckTimeout}
	s.components = append(s.components, component{name: "database", fn: db.Ping})
	if provider != nil {
		s.components = append(s.components, component{name: "provider", fn: provider.HealthCheck})
	}
	return s
}

// Check runs every component check with its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, p := range s.components {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := p.fn(pctx)
		cancel()

		if err != nil {
			checks[p.name] = CheckError
			failed++
			continue
		}
		checks[p.name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == len(s.components) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
