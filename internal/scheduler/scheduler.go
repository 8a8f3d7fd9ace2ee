// Package scheduler runs jobs once a day at a fixed wall-clock time in a
// named timezone, gated by a weekday guard.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
)

// Outcome is the result of a single tick.
type Outcome string

const (
	OutcomeFired       Outcome = "fired"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeUndelivered Outcome = "undelivered"
	OutcomeFailed      Outcome = "failed"
)

// DefaultTimeout bounds a fire when the job sets none.
const DefaultTimeout = 30 * time.Second

// RunFunc produces and delivers a job's output. now is the fire instant in
// the scheduler's timezone.
type RunFunc func(ctx context.Context, now time.Time) error

// Job describes what to run and when.
type Job struct {
	Name    string
	At      ClockTime
	Guard   Guard
	Run     RunFunc
	Timeout time.Duration
}

// Stats is a point-in-time view of a scheduler for status reporting.
type Stats struct {
	Job         string     `json:"job"`
	At          string     `json:"at"`
	Guard       string     `json:"guard"`
	Running     bool       `json:"running"`
	Fires       int        `json:"fires"`
	Skips       int        `json:"skips"`
	Undelivered int        `json:"undelivered"`
	Failures    int        `json:"failures"`
	LastOutcome Outcome    `json:"last_outcome,omitempty"`
	LastFire    *time.Time `json:"last_fire,omitempty"`
	NextFire    time.Time  `json:"next_fire"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler fires one Job every day at Job.At in loc. Each scheduler owns its
// own cron instance; ticks never overlap and never return an error.
type Scheduler struct {
	job      Job
	loc      *time.Location
	schedule *cron.SpecSchedule
	cron     *cron.Cron
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	started bool
	stopped bool
	stats   Stats
}

// New validates job and builds an idle scheduler.
func New(job Job, loc *time.Location, logger zerolog.Logger, opts ...Option) (*Scheduler, error) {
	if job.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidSchedule, "job name is required")
	}
	if job.Run == nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSchedule, "job %s has no run function", job.Name)
	}
	if loc == nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSchedule, "job %s has no timezone", job.Name)
	}
	if job.Guard == nil {
		job.Guard = EveryDay()
	}
	if job.Timeout <= 0 {
		job.Timeout = DefaultTimeout
	}

	parsed, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", job.At.Minute, job.At.Hour))
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSchedule, "job %s at %s: %v", job.Name, job.At, err)
	}
	spec, ok := parsed.(*cron.SpecSchedule)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSchedule, "job %s: unexpected schedule type %T", job.Name, parsed)
	}
	// Pin the schedule to the job zone so Next works in local wall-clock time
	// whatever location the caller's instant carries.
	spec.Location = loc

	logger = logging.WithJob(logging.WithComponent(logger, "scheduler"), job.Name)
	s := &Scheduler{
		job:      job,
		loc:      loc,
		schedule: spec,
		logger:   logger,
		now:      time.Now,
		stats: Stats{
			Job:   job.Name,
			At:    job.At.String(),
			Guard: job.Guard.String(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.cron.Schedule(spec, cron.FuncJob(func() {
		s.Fire(context.Background(), s.now())
	}))

	return s, nil
}

// Name returns the job name.
func (s *Scheduler) Name() string { return s.job.Name }

// Location returns the job timezone.
func (s *Scheduler) Location() *time.Location { return s.loc }

// NextFire returns the next instant strictly after now at which the job's
// wall-clock time occurs in its timezone.
func (s *Scheduler) NextFire(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Start arms the scheduler. It never fires immediately. Starting twice is a
// no-op; starting after Stop returns ErrSchedulerStopped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return apperrors.ErrSchedulerStopped
	}
	if s.started {
		return nil
	}
	s.started = true
	s.cron.Start()

	s.logger.Info().
		Str("at", s.job.At.String()).
		Str("tz", s.loc.String()).
		Str("guard", s.job.Guard.String()).
		Time("next", s.NextFire(s.now())).
		Msg("Scheduler armed")
	return nil
}

// Stop cancels future fires and waits for an in-flight fire to finish,
// bounded by the job timeout. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	wasStarted := s.started
	s.mu.Unlock()

	if !wasStarted {
		return
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(s.job.Timeout + time.Second):
		s.logger.Warn().Dur("timeout", s.job.Timeout).Msg("In-flight fire did not finish before shutdown")
	}
	s.logger.Info().Msg("Scheduler stopped")
}

// Fire runs one tick at now: guard check, then the job under a bounded
// context. Errors and panics are classified into the outcome and logged;
// nothing escapes.
func (s *Scheduler) Fire(ctx context.Context, now time.Time) Outcome {
	local := now.In(s.loc)

	var (
		outcome Outcome
		err     error
	)
	if !s.job.Guard.Allow(local) {
		outcome = OutcomeSkipped
	} else {
		err = s.run(ctx, local)
		outcome = classify(err)
	}

	next := s.NextFire(now)
	s.record(outcome, local)
	logging.LogFire(s.logger, s.job.Name, string(outcome), local, next, err)
	return outcome
}

func (s *Scheduler) run(ctx context.Context, local time.Time) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.job.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	err = s.job.Run(ctx, local)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = apperrors.Wrap(apperrors.ErrTimeout, err.Error())
	}
	return err
}

func classify(err error) Outcome {
	if err == nil {
		return OutcomeFired
	}
	var sinkErr *apperrors.SinkError
	if errors.As(err, &sinkErr) || errors.Is(err, apperrors.ErrChannelNotFound) {
		return OutcomeUndelivered
	}
	return OutcomeFailed
}

func (s *Scheduler) record(outcome Outcome, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome {
	case OutcomeFired:
		s.stats.Fires++
	case OutcomeSkipped:
		s.stats.Skips++
	case OutcomeUndelivered:
		s.stats.Undelivered++
	case OutcomeFailed:
		s.stats.Failures++
	}
	s.stats.LastOutcome = outcome
	s.stats.LastFire = &at
}

// Stats returns a snapshot of the scheduler's counters and next fire.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	st := s.stats
	st.Running = s.started && !s.stopped
	s.mu.Unlock()

	st.NextFire = s.NextFire(s.now())
	return st
}
