package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justtrades-bot/internal/commands"
	"justtrades-bot/internal/config"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/health"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/scheduler"
)

type quoteSource map[string]models.Quote

func (q quoteSource) Quote(_ context.Context, symbol string) (models.Quote, error) {
	if quote, ok := q[symbol]; ok {
		return quote, nil
	}
	return models.Quote{}, apperrors.ErrNoMarketData
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Discord: config.DiscordConfig{Prefix: "!"},
		Schedule: config.ScheduleConfig{
			Timezone:        "America/Chicago",
			TimezoneLabel:   "CT",
			DeliveryTimeout: time.Second,
			Daily: config.JobConfig{
				Enabled: true, At: "08:30", Guard: "weekdays",
				Channel: string(models.ChannelDailyBias), IncludeMarket: true,
			},
			Weekly: config.JobConfig{
				Enabled: true, At: "06:00", Guard: "monday",
				Channel: string(models.ChannelEconomicCalendar), Days: 7,
			},
		},
		Market:  config.MarketConfig{Timeout: time.Second},
		Journal: config.JournalConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "journal.db")},
	}
}

func newTestCore(t *testing.T, cfg *config.Config, sink notify.Sink) *Core {
	t.Helper()
	src := quoteSource{"NQ=F": models.NewQuote("NQ=F", "", 21545.25, 21500.25)}
	now := time.Date(2026, 1, 26, 9, 15, 0, 0, time.UTC)
	core, err := NewCore(cfg, sink, CoreOptions{Source: src, Now: func() time.Time { return now }}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func TestNewCoreBuildsConfiguredJobs(t *testing.T) {
	core := newTestCore(t, testConfig(t), notify.NewMemorySink())

	stats := core.SchedulerStats()
	require.Len(t, stats, 2)
	assert.Equal(t, JobDailyBriefing, stats[0].Job)
	assert.Equal(t, "weekdays", stats[0].Guard)
	assert.Equal(t, JobWeeklyCalendar, stats[1].Job)
	assert.Equal(t, "06:00", stats[1].At)
	assert.False(t, stats[0].Running, "schedulers stay idle until started")
}

func TestDisabledJobIsNotScheduled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.Daily.Enabled = false
	core := newTestCore(t, cfg, notify.NewMemorySink())

	stats := core.SchedulerStats()
	require.Len(t, stats, 1)
	assert.Equal(t, JobWeeklyCalendar, stats[0].Job)
}

func TestWeeklyJobPostsCalendar(t *testing.T) {
	sink := notify.NewMemorySink()
	core := newTestCore(t, testConfig(t), sink)

	monday := time.Date(2026, 1, 26, 6, 0, 0, 0, core.Location)
	var weekly *scheduler.Scheduler
	for _, s := range core.Schedulers {
		if s.Name() == JobWeeklyCalendar {
			weekly = s
		}
	}
	require.NotNil(t, weekly)
	assert.Equal(t, scheduler.OutcomeFired, weekly.Fire(context.Background(), monday))

	posts := sink.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.ChannelEconomicCalendar, posts[0].Channel)
	assert.Equal(t, "Weekly Economic Calendar", posts[0].Message.Title)
}

func TestDailyJobMissingChannelIsUndelivered(t *testing.T) {
	sink := notify.NewMemorySink()
	sink.Missing[models.ChannelDailyBias] = true
	core := newTestCore(t, testConfig(t), sink)

	wednesday := time.Date(2026, 1, 21, 8, 30, 0, 0, core.Location)
	assert.Equal(t, scheduler.OutcomeUndelivered, core.Schedulers[0].Fire(context.Background(), wednesday))
	assert.Empty(t, sink.Posts())
}

func TestRouterSharesCalendarWithDigest(t *testing.T) {
	sink := notify.NewMemorySink()
	core := newTestCore(t, testConfig(t), sink)
	ctx := context.Background()

	reply := core.Router.Dispatch(ctx, commands.Invocation{
		Style:  commands.StylePrefix,
		Name:   "event-add",
		Tokens: []string{"2026-01-28", "10:00", "Crude Inventories", "medium"},
		Author: "mod",
	})
	assert.Contains(t, reply.Content, "Crude Inventories")

	reply = core.Router.Dispatch(ctx, commands.Invocation{Style: commands.StyleSlash, Name: "post-calendar", Author: "mod"})
	assert.Equal(t, "Calendar posted!", reply.Content)

	posts := sink.Posts()
	require.Len(t, posts, 1)
	var found bool
	for _, f := range posts[0].Message.Fields {
		if f.Name == "[MED] Crude Inventories" {
			found = true
		}
	}
	assert.True(t, found, "event added by command appears in the posted digest")
}

func TestJournalDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = false
	core := newTestCore(t, cfg, notify.NewMemorySink())

	reply := core.Router.Dispatch(context.Background(), commands.Invocation{Style: commands.StylePrefix, Name: "stats", Author: "mod"})
	assert.NotEmpty(t, reply.Content)

	report := core.Monitor.Check(context.Background())
	for _, c := range report.Components {
		assert.NotEqual(t, "journal", c.Name)
	}
}

func TestHealthChecksRegistered(t *testing.T) {
	core := newTestCore(t, testConfig(t), notify.NewMemorySink())

	report := core.Monitor.Check(context.Background())
	byName := map[string]health.Status{}
	for _, c := range report.Components {
		byName[c.Name] = c.Status
	}
	assert.Equal(t, health.StatusHealthy, byName["journal"])
	assert.Equal(t, health.StatusHealthy, byName["schedulers"])
}

func TestSchedulerHealthDegradesOnFailedFire(t *testing.T) {
	h := schedulerHealth([]scheduler.Stats{
		{Job: JobDailyBriefing, LastOutcome: scheduler.OutcomeFired},
		{Job: JobWeeklyCalendar, LastOutcome: scheduler.OutcomeUndelivered},
	})
	assert.Equal(t, health.StatusDegraded, h.Status)
	assert.Contains(t, h.Message, JobWeeklyCalendar)
}

func TestStartStopSchedulers(t *testing.T) {
	core := newTestCore(t, testConfig(t), notify.NewMemorySink())
	core.StartSchedulers()
	for _, st := range core.SchedulerStats() {
		assert.True(t, st.Running, st.Job)
	}
	core.StopSchedulers()
	for _, st := range core.SchedulerStats() {
		assert.False(t, st.Running, st.Job)
	}
}
