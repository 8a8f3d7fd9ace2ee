// Package bot assembles the bot from its components and runs it.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/calendar"
	"justtrades-bot/internal/commands"
	"justtrades-bot/internal/config"
	"justtrades-bot/internal/digest"
	"justtrades-bot/internal/health"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/market"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/resilience"
	"justtrades-bot/internal/scheduler"
	"justtrades-bot/internal/store"
)

// Job names used in logs and the status command.
const (
	JobDailyBriefing  = "daily-briefing"
	JobWeeklyCalendar = "weekly-calendar"
)

// Core is everything the bot needs except the chat connection: the event
// store, market data, journal, digest builder, command router and the
// scheduled digests. Posts go to the Sink it was built with.
type Core struct {
	Config     *config.Config
	Location   *time.Location
	Calendar   *calendar.Store
	Market     *market.Service
	Digest     *digest.Builder
	Router     *commands.Router
	Schedulers []*scheduler.Scheduler
	Monitor    *health.Monitor

	journal *store.SQLiteJournal
	yahoo   *market.YahooSource
	weekly  digest.Spec
	logger  zerolog.Logger
}

// CoreOptions overrides collaborators, mainly for tests and offline CLI use.
type CoreOptions struct {
	// Source replaces the Yahoo Finance quote source.
	Source market.Source
	// Gateway reports connection details to the status command.
	Gateway commands.Gateway
	// Now replaces time.Now for command handlers.
	Now func() time.Time
}

// NewCore builds the core from cfg. Posts from commands and scheduled jobs go
// to sink. The journal is opened only when enabled in cfg.
func NewCore(cfg *config.Config, sink notify.Sink, opts CoreOptions, logger zerolog.Logger) (*Core, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	seed, err := calendar.Seed(cfg.Calendar.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("loading calendar seed: %w", err)
	}

	c := &Core{
		Config:   cfg,
		Location: loc,
		Calendar: calendar.NewStore(logger, seed...),
		Monitor:  health.NewMonitor(health.DefaultMonitorConfig(), logger),
		logger:   logging.WithComponent(logger, "bot"),
	}

	source := opts.Source
	if source == nil {
		c.yahoo = market.NewYahooSource(logger)
		source = c.yahoo
	}
	c.Market = market.NewService(source, market.SymbolsFromConfig(cfg.Market.Symbols), cfg.Market.Timeout, logger)
	c.Digest = digest.NewBuilder(c.Calendar, c.Market, cfg.Schedule.TimezoneLabel, logger)
	c.weekly = jobSpec(digest.KindWeekly, cfg.Schedule.Weekly)

	if cfg.Journal.Enabled {
		j, err := store.NewSQLiteJournal(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		c.journal = j
	}

	if err := c.buildSchedulers(sink); err != nil {
		c.Close()
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c.Router = commands.NewRouter(cfg.Discord.Prefix, sink, func() time.Time { return now().In(loc) }, logger)

	deps := commands.Deps{
		Calendar:   c.Calendar,
		Market:     c.Market,
		Digest:     c.Digest,
		Weekly:     c.weekly,
		Schedulers: c.SchedulerStats,
		Gateway:    opts.Gateway,
		TZLabel:    cfg.Schedule.TimezoneLabel,
	}
	// A nil *SQLiteJournal in the interface would not compare equal to nil.
	if c.journal != nil {
		deps.Journal = c.journal
	}
	if err := c.Router.Register(commands.Catalog(deps)...); err != nil {
		c.Close()
		return nil, err
	}

	c.registerChecks()
	return c, nil
}

func jobSpec(kind digest.Kind, job config.JobConfig) digest.Spec {
	return digest.Spec{Kind: kind, Days: job.Days, IncludeMarket: job.IncludeMarket}
}

func (c *Core) buildSchedulers(sink notify.Sink) error {
	jobs := []struct {
		name string
		kind digest.Kind
		cfg  config.JobConfig
	}{
		{JobDailyBriefing, digest.KindDaily, c.Config.Schedule.Daily},
		{JobWeeklyCalendar, digest.KindWeekly, c.Config.Schedule.Weekly},
	}

	for _, j := range jobs {
		if !j.cfg.Enabled {
			c.logger.Info().Str("job", j.name).Msg("Scheduled job disabled")
			continue
		}
		at, err := scheduler.ParseClockTime(j.cfg.At)
		if err != nil {
			return err
		}
		guard, err := scheduler.ParseGuard(j.cfg.Guard)
		if err != nil {
			return err
		}
		channel, ok := models.ParseChannelKey(j.cfg.Channel)
		if !ok {
			return fmt.Errorf("job %s: unknown channel %q", j.name, j.cfg.Channel)
		}
		spec := jobSpec(j.kind, j.cfg)

		s, err := scheduler.New(scheduler.Job{
			Name:    j.name,
			At:      at,
			Guard:   guard,
			Timeout: c.Config.Schedule.DeliveryTimeout,
			Run: func(ctx context.Context, now time.Time) error {
				return c.Digest.Deliver(ctx, sink, channel, spec, now)
			},
		}, c.Location, c.logger)
		if err != nil {
			return err
		}
		c.Schedulers = append(c.Schedulers, s)
	}
	return nil
}

func (c *Core) registerChecks() {
	if c.journal != nil {
		c.Monitor.Register("journal", health.PingCheck(c.journal.Ping))
	}
	if c.yahoo != nil {
		breaker := c.yahoo.Breaker()
		c.Monitor.Register("market_data", func(context.Context) health.ComponentHealth {
			return breakerHealth(breaker)
		})
	}
	c.Monitor.Register("schedulers", func(context.Context) health.ComponentHealth {
		return schedulerHealth(c.SchedulerStats())
	})
}

// breakerHealth maps an open circuit to degraded: commands still answer,
// only market sections fall back to the placeholder.
func breakerHealth(cb *resilience.CircuitBreaker) health.ComponentHealth {
	st := cb.Stats()
	h := health.Healthy("circuit " + string(st.State))
	if st.State != resilience.CircuitClosed {
		h.Status = health.StatusDegraded
	}
	h.Details = map[string]interface{}{
		"current_failures":  st.CurrentFailures,
		"total_rejected":    st.TotalRejected,
		"last_state_change": st.LastStateChange,
	}
	return h
}

func schedulerHealth(stats []scheduler.Stats) health.ComponentHealth {
	h := health.Healthy(fmt.Sprintf("%d jobs", len(stats)))
	h.Details = make(map[string]interface{}, len(stats))
	for _, st := range stats {
		h.Details[st.Job] = st.NextFire
		if st.LastOutcome == scheduler.OutcomeFailed || st.LastOutcome == scheduler.OutcomeUndelivered {
			h.Status = health.StatusDegraded
			h.Message = fmt.Sprintf("%s last outcome %s", st.Job, st.LastOutcome)
		}
	}
	return h
}

// SchedulerStats returns the stats of every scheduled job.
func (c *Core) SchedulerStats() []scheduler.Stats {
	stats := make([]scheduler.Stats, 0, len(c.Schedulers))
	for _, s := range c.Schedulers {
		stats = append(stats, s.Stats())
	}
	return stats
}

// WeeklySpec is the digest posted by the weekly job and /post-calendar.
func (c *Core) WeeklySpec() digest.Spec { return c.weekly }

// DailySpec is the digest posted by the daily job.
func (c *Core) DailySpec() digest.Spec {
	return jobSpec(digest.KindDaily, c.Config.Schedule.Daily)
}

// StartSchedulers arms every scheduled job.
func (c *Core) StartSchedulers() {
	for _, s := range c.Schedulers {
		if err := s.Start(); err != nil {
			c.logger.Error().Err(err).Str("job", s.Name()).Msg("Failed to start scheduler")
		}
	}
}

// StopSchedulers cancels future fires and waits for in-flight ones.
func (c *Core) StopSchedulers() {
	for _, s := range c.Schedulers {
		s.Stop()
	}
}

// Close releases the journal database.
func (c *Core) Close() error {
	if c.journal == nil {
		return nil
	}
	err := c.journal.Close()
	c.journal = nil
	return err
}
