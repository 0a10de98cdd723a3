package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all collaborators are reachable.
	Healthy Status = "ok"
	// Degraded indicates at least one collaborator is unreachable.
	Degraded Status = "degraded"
)

// Check names for the two backing collaborators.
const (
	CheckIndex = "index"
	CheckCache = "cache"
)

// Report aggregates per-collaborator availability. Checks maps each
// collaborator to true when reachable; an unreachable collaborator is a
// typed false, never an error escaping the health path.
type Report struct {
	Status Status
	Checks map[string]bool
}

// Service coordinates health checks.
type Service struct {
	index IndexPinger
	cache CachePinger
}

// New creates a Service.
func New(index IndexPinger, cache CachePinger) *Service {
	return &Service{index: index, cache: cache}
}

// Check probes every collaborator. It never fails: unreachable stores are
// reported, not raised.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]bool{
		CheckIndex: s.index.Ping(ctx) == nil,
		CheckCache: s.cache.Ping(ctx) == nil,
	}

	status := Healthy
	for _, ok := range checks {
		if !ok {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
