package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justtrades-bot/internal/scheduler"
)

func TestMonitorAggregatesStatus(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), zerolog.Nop())
	m.Register("journal", PingCheck(func(context.Context) error { return nil }))

	report := m.Check(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	names := make([]string, 0, len(report.Components))
	for _, c := range report.Components {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"goroutines", "journal", "memory"}, names)

	m.Register("discord", func(context.Context) ComponentHealth {
		return Unhealthy(errors.New("gateway disconnected"))
	})
	report = m.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, int64(2), report.TotalChecks)
	assert.Equal(t, int64(1), report.FailedChecks)
}

func TestMonitorRecoversPanickingCheck(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), zerolog.Nop())
	m.Register("market", func(context.Context) ComponentHealth { panic("boom") })

	report := m.Check(context.Background())
	require.Equal(t, StatusUnhealthy, report.Status)
	for _, c := range report.Components {
		if c.Name == "market" {
			assert.Contains(t, c.Message, "panic recovered")
		}
	}
}

func TestDegradedDoesNotMaskUnhealthy(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), zerolog.Nop())
	m.Register("a", func(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDegraded} })
	m.Register("b", func(context.Context) ComponentHealth { return Unhealthy(errors.New("down")) })
	assert.Equal(t, StatusUnhealthy, m.Check(context.Background()).Status)
}

func TestServerEndpoints(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), zerolog.Nop())
	stats := func() []scheduler.Stats {
		return []scheduler.Stats{{Job: "daily-briefing", At: "08:30", Guard: "weekdays", NextFire: time.Date(2026, 1, 22, 14, 30, 0, 0, time.UTC)}}
	}
	s := NewServer(":0", m, stats, "1.2.3", zerolog.Nop())
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Schedulers []scheduler.Stats `json:"schedulers"`
		Health     Report            `json:"health"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Schedulers, 1)
	assert.Equal(t, "daily-briefing", body.Schedulers[0].Job)
	assert.Equal(t, StatusHealthy, body.Health.Status)
}

func TestReadyzReportsUnavailable(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig(), zerolog.Nop())
	m.Register("journal", PingCheck(func(context.Context) error { return errors.New("database is locked") }))
	router := NewServer(":0", m, nil, "dev", zerolog.Nop()).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
