// Package health serves liveness, readiness and metrics endpoints for a
// running cfmm host.
//
// Endpoints:
// - /health - Basic liveness check
// - /health/ready - Readiness check, served from a short-lived cache
// - /health/detailed - Fresh run of every check with latencies
// - /metrics - Prometheus exposition of the module metrics
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc checks one component. A nil error means the component is usable.
type CheckFunc func(ctx context.Context) error

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Config holds configuration for the health checker
type Config struct {
	// MaxResponseTime marks a check degraded when it answers slower than this
	MaxResponseTime time.Duration

	// CheckTimeout aborts a check; a timed out check is unhealthy
	CheckTimeout time.Duration

	// CacheDuration is how long readiness results are reused
	CacheDuration time.Duration
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: time.Second,
		CheckTimeout:    5 * time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// Checker runs the registered checks
type Checker struct {
	logger log.Logger
	cfg    Config

	mu           sync.RWMutex
	checks       map[string]CheckFunc
	lastCheck    time.Time
	cachedHealth *HealthCheck
}

// NewChecker creates a new health checker without checks
func NewChecker(logger log.Logger, cfg Config) *Checker {
	return &Checker{
		logger: logger.With("module", "health"),
		cfg:    cfg,
		checks: make(map[string]CheckFunc),
	}
}

// AddCheck registers check under name, replacing any check of that name
func (c *Checker) AddCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
	c.cachedHealth = nil
}

// Check runs every check concurrently. Cached results are returned when
// fresh is false and the last run is recent enough.
func (c *Checker) Check(ctx context.Context, fresh bool) *HealthCheck {
	if !fresh {
		if cached := c.cached(); cached != nil {
			return cached
		}
	}

	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		names = append(names, name)
		checks[name] = check
	}
	c.mu.RUnlock()
	sort.Strings(names)

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth, len(names)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, name := range names {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			result := c.run(ctx, check)
			mu.Lock()
			health.Components[name] = result
			mu.Unlock()
		}(name, checks[name])
	}
	wg.Wait()

	health.Status = overallStatus(health.Components)
	for name, component := range health.Components {
		if component.Status == StatusUnhealthy {
			c.logger.Error("component unhealthy", "component", name, "error", component.Message)
		}
	}

	c.mu.Lock()
	c.lastCheck = time.Now()
	c.cachedHealth = health
	c.mu.Unlock()

	return health
}

func (c *Checker) run(ctx context.Context, check CheckFunc) ComponentHealth {
	start := time.Now()
	timeoutCtx, cancel := context.WithTimeout(ctx, c.cfg.CheckTimeout)
	defer cancel()

	err := check(timeoutCtx)
	latency := time.Since(start)

	switch {
	case err != nil:
		return ComponentHealth{Status: StatusUnhealthy, Message: err.Error(), Latency: latency, Timestamp: time.Now()}
	case latency > c.cfg.MaxResponseTime:
		return ComponentHealth{Status: StatusDegraded, Message: "slow response", Latency: latency, Timestamp: time.Now()}
	default:
		return ComponentHealth{Status: StatusHealthy, Latency: latency, Timestamp: time.Now()}
	}
}

func (c *Checker) cached() *HealthCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cachedHealth == nil || time.Since(c.lastCheck) >= c.cfg.CacheDuration {
		return nil
	}
	return c.cachedHealth
}

func overallStatus(components map[string]ComponentHealth) Status {
	status := StatusHealthy
	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// RegisterRoutes registers the health and metrics endpoints
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (c *Checker) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (c *Checker) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	c.writeHealth(w, c.Check(r.Context(), false))
}

func (c *Checker) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	c.writeHealth(w, c.Check(r.Context(), true))
}

// writeHealth answers 503 only when a component is unhealthy; degraded is
// still ready.
func (c *Checker) writeHealth(w http.ResponseWriter, health *HealthCheck) {
	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.writeJSON(w, statusCode, health)
}

func (c *Checker) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Error("failed to write health response", "error", err)
	}
}
