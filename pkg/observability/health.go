package observability

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one can be picked.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthChecker performs one health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth summarizes every registered check.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// ToJSON serializes the overall health to JSON.
func (h OverallHealth) ToJSON() ([]byte, error) {
	return json.Marshal(h)
}

// HealthRegistry runs named checks and caches their last results.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	last     map[string]HealthCheckResult
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{
		checkers: make(map[string]HealthChecker),
		last:     make(map[string]HealthCheckResult),
	}
}

// Register adds or replaces the checker for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Unregister removes a checker and its cached result.
func (r *HealthRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
	delete(r.last, name)
}

// CheckOne runs a single check by name.
func (r *HealthRegistry) CheckOne(ctx context.Context, name string) (HealthCheckResult, bool) {
	r.mu.RLock()
	checker, ok := r.checkers[name]
	r.mu.RUnlock()
	if !ok {
		return HealthCheckResult{}, false
	}
	return run(ctx, checker), true
}

// GetOverallHealth runs all checks concurrently and caches the results.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	r.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := run(ctx, checker)
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	r.mu.Lock()
	r.last = results
	r.mu.Unlock()

	return summarize(results)
}

// Last returns the cached outcome of the previous GetOverallHealth call
// without running any check.
func (r *HealthRegistry) Last() OverallHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := make(map[string]HealthCheckResult, len(r.last))
	for name, res := range r.last {
		results[name] = res
	}
	return summarize(results)
}

func run(ctx context.Context, checker HealthChecker) HealthCheckResult {
	start := time.Now()
	res := checker(ctx)
	res.Duration = time.Since(start)
	res.Timestamp = time.Now()
	return res
}

func summarize(results map[string]HealthCheckResult) OverallHealth {
	status := HealthStatusHealthy
	for _, res := range results {
		if res.Status.severity() > status.severity() {
			status = res.Status
		}
	}
	return OverallHealth{Status: status, Timestamp: time.Now(), Checks: results}
}

// PingChecker reports healthy when ping succeeds and failStatus otherwise.
func PingChecker(component string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failStatus, Message: component + " unavailable: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: component + " reachable"}
	}
}

// StoreHealthChecker checks the timetable store. Without it nothing works,
// so a failure is unhealthy.
func StoreHealthChecker(driver string, ping func(ctx context.Context) error) HealthChecker {
	return PingChecker(driver+" store", HealthStatusUnhealthy, ping)
}

// BrokerHealthChecker checks the event broker. Slot changes still persist
// while it is down, so a failure only degrades.
func BrokerHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("rabbitmq", HealthStatusDegraded, ping)
}
