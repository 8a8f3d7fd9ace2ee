// Package health tracks component health and serves it over HTTP.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/logging"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "HEALTHY"
	StatusDegraded  Status = "DEGRADED"
	StatusUnhealthy Status = "UNHEALTHY"
	StatusUnknown   Status = "UNKNOWN"
)

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LastCheck time.Time              `json:"last_check"`
	Latency   time.Duration          `json:"latency_ns"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Check reports the health of one component.
type Check func(ctx context.Context) ComponentHealth

// Report is the overall health at a point in time.
type Report struct {
	Status        Status            `json:"status"`
	Uptime        string            `json:"uptime"`
	StartTime     time.Time         `json:"start_time"`
	Components    []ComponentHealth `json:"components"`
	Goroutines    int               `json:"goroutines"`
	MemoryAllocMB uint64            `json:"memory_alloc_mb"`
	TotalChecks   int64             `json:"total_checks"`
	FailedChecks  int64             `json:"failed_checks"`
}

// MonitorConfig holds monitor configuration.
type MonitorConfig struct {
	CheckTimeout       time.Duration
	MemoryThresholdMB  uint64
	GoroutineThreshold int
}

// DefaultMonitorConfig returns default configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckTimeout:       5 * time.Second,
		MemoryThresholdMB:  256,
		GoroutineThreshold: 1000,
	}
}

// Monitor runs registered component checks on demand.
type Monitor struct {
	mu sync.Mutex

	cfg        MonitorConfig
	startTime  time.Time
	components map[string]Check
	logger     zerolog.Logger

	totalChecks  int64
	failedChecks int64
}

// NewMonitor creates a monitor with no components.
func NewMonitor(cfg MonitorConfig, logger zerolog.Logger) *Monitor {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = DefaultMonitorConfig().CheckTimeout
	}
	return &Monitor{
		cfg:        cfg,
		startTime:  time.Now(),
		components: make(map[string]Check),
		logger:     logging.WithComponent(logger, "health"),
	}
}

// Register adds or replaces the check for a component.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = check
}

// Check runs every component check concurrently and aggregates the result.
// A panicking check counts as unhealthy.
func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.Lock()
	components := make(map[string]Check, len(m.components))
	for k, v := range m.components {
		components[k] = v
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.CheckTimeout)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan ComponentHealth, len(components)+2)

	for name, check := range components {
		wg.Add(1)
		go func(n string, c Check) {
			defer wg.Done()
			results <- m.runCheck(ctx, n, c)
		}(name, check)
	}
	results <- m.checkMemory()
	results <- m.checkGoroutines()

	wg.Wait()
	close(results)

	report := Report{
		Status:     StatusHealthy,
		Uptime:     time.Since(m.startTime).Round(time.Second).String(),
		StartTime:  m.startTime,
		Goroutines: runtime.NumGoroutine(),
	}
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	report.MemoryAllocMB = memStats.Alloc / 1024 / 1024

	var failed int64
	for h := range results {
		report.Components = append(report.Components, h)
		switch h.Status {
		case StatusUnhealthy:
			failed++
			report.Status = StatusUnhealthy
			m.logger.Warn().Str("check", h.Name).Str("reason", h.Message).Msg("Component unhealthy")
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	sort.Slice(report.Components, func(i, j int) bool {
		return report.Components[i].Name < report.Components[j].Name
	})

	m.mu.Lock()
	m.totalChecks++
	m.failedChecks += failed
	report.TotalChecks = m.totalChecks
	report.FailedChecks = m.failedChecks
	m.mu.Unlock()

	return report
}

func (m *Monitor) runCheck(ctx context.Context, name string, check Check) (health ComponentHealth) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			health = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("panic recovered: %v", r),
			}
		}
		health.Name = name
		health.LastCheck = time.Now()
		health.Latency = time.Since(start)
	}()
	return check(ctx)
}

func (m *Monitor) checkMemory() ComponentHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	allocMB := memStats.Alloc / 1024 / 1024

	health := ComponentHealth{
		Name:      "memory",
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("Memory usage: %d MB", allocMB),
		LastCheck: time.Now(),
		Details: map[string]interface{}{
			"alloc_mb": allocMB,
			"sys_mb":   memStats.Sys / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
	}
	if m.cfg.MemoryThresholdMB > 0 && allocMB > m.cfg.MemoryThresholdMB {
		health.Status = StatusDegraded
		health.Message = fmt.Sprintf("Memory usage high: %d MB", allocMB)
	}
	return health
}

func (m *Monitor) checkGoroutines() ComponentHealth {
	n := runtime.NumGoroutine()
	health := ComponentHealth{
		Name:      "goroutines",
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("Goroutine count: %d", n),
		LastCheck: time.Now(),
		Details:   map[string]interface{}{"count": n},
	}
	if m.cfg.GoroutineThreshold > 0 && n > m.cfg.GoroutineThreshold {
		health.Status = StatusDegraded
		health.Message = fmt.Sprintf("High goroutine count: %d", n)
	}
	return health
}

// Healthy returns a check result with the given message.
func Healthy(msg string) ComponentHealth {
	return ComponentHealth{Status: StatusHealthy, Message: msg}
}

// Unhealthy returns a failed check result for err.
func Unhealthy(err error) ComponentHealth {
	return ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
}

// PingCheck adapts a ping function, such as a database ping, into a Check.
func PingCheck(ping func(ctx context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return Unhealthy(err)
		}
		return Healthy("ok")
	}
}
