package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/pkg/utils"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := utils.LoadLocation(utils.DefaultTimezone)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func newTestScheduler(t *testing.T, guard Guard, run RunFunc) *Scheduler {
	t.Helper()
	s, err := New(Job{
		Name:    "daily-briefing",
		At:      ClockTime{Hour: 8, Minute: 30},
		Guard:   guard,
		Run:     run,
		Timeout: time.Second,
	}, chicago(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func noop(context.Context, time.Time) error { return nil }

func TestNextFireStrictlyAfterNow(t *testing.T) {
	loc := chicago(t)
	s := newTestScheduler(t, Weekdays(), noop)

	before := time.Date(2026, 1, 21, 8, 29, 59, 0, loc)
	want := time.Date(2026, 1, 21, 8, 30, 0, 0, loc)
	if got := s.NextFire(before); !got.Equal(want) {
		t.Errorf("NextFire(08:29:59) = %v, want %v", got, want)
	}

	after := time.Date(2026, 1, 21, 8, 30, 1, 0, loc)
	want = time.Date(2026, 1, 22, 8, 30, 0, 0, loc)
	if got := s.NextFire(after); !got.Equal(want) {
		t.Errorf("NextFire(08:30:01) = %v, want %v", got, want)
	}

	exact := time.Date(2026, 1, 21, 8, 30, 0, 0, loc)
	if got := s.NextFire(exact); !got.Equal(want) {
		t.Errorf("NextFire(08:30:00) = %v, want %v", got, want)
	}
}

func TestNextFireUsesJobZone(t *testing.T) {
	loc := chicago(t)
	s := newTestScheduler(t, Weekdays(), noop)

	// 14:00 UTC on 2026-01-21 is 08:00 CST
	now := time.Date(2026, 1, 21, 14, 0, 0, 0, time.UTC)
	want := time.Date(2026, 1, 21, 8, 30, 0, 0, loc)
	if got := s.NextFire(now); !got.Equal(want) {
		t.Errorf("NextFire = %v, want %v", got, want)
	}
}

func TestFireSkipsOnWeekend(t *testing.T) {
	loc := chicago(t)
	var calls int32
	s := newTestScheduler(t, Weekdays(), func(context.Context, time.Time) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	saturday := time.Date(2026, 1, 24, 8, 30, 0, 0, loc)
	if got := s.Fire(context.Background(), saturday); got != OutcomeSkipped {
		t.Errorf("outcome = %s, want skipped", got)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("job ran on Saturday")
	}

	want := time.Date(2026, 1, 25, 8, 30, 0, 0, loc)
	if next := s.NextFire(saturday); !next.Equal(want) {
		t.Errorf("re-armed for %v, want %v", next, want)
	}

	st := s.Stats()
	if st.Skips != 1 || st.Failures != 0 || st.LastOutcome != OutcomeSkipped {
		t.Errorf("stats = %+v", st)
	}
}

func TestStatsLastFireUnsetUntilFirstTick(t *testing.T) {
	loc := chicago(t)
	s := newTestScheduler(t, Weekdays(), noop)

	st := s.Stats()
	if st.LastFire != nil {
		t.Errorf("LastFire = %v before any tick", st.LastFire)
	}
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("last_fire")) {
		t.Errorf("unfired stats serialize last_fire: %s", raw)
	}

	wednesday := time.Date(2026, 1, 21, 8, 30, 0, 0, loc)
	s.Fire(context.Background(), wednesday)
	st = s.Stats()
	if st.LastFire == nil || !st.LastFire.Equal(wednesday) {
		t.Errorf("LastFire = %v, want %v", st.LastFire, wednesday)
	}
}

func TestFireOnlyOnMonday(t *testing.T) {
	loc := chicago(t)
	s := newTestScheduler(t, OnlyOn(time.Monday), noop)

	if got := s.Fire(context.Background(), time.Date(2026, 1, 27, 8, 30, 0, 0, loc)); got != OutcomeSkipped {
		t.Errorf("Tuesday outcome = %s", got)
	}
	if got := s.Fire(context.Background(), time.Date(2026, 1, 26, 8, 30, 0, 0, loc)); got != OutcomeFired {
		t.Errorf("Monday outcome = %s", got)
	}
}

func TestFireGuardUsesLocalDate(t *testing.T) {
	s := newTestScheduler(t, Weekdays(), noop)

	// Saturday 02:00 UTC is still Friday evening in Chicago.
	now := time.Date(2026, 1, 24, 2, 0, 0, 0, time.UTC)
	if got := s.Fire(context.Background(), now); got != OutcomeFired {
		t.Errorf("outcome = %s, want fired", got)
	}
}

func TestFireSinkNotFoundIsUndelivered(t *testing.T) {
	loc := chicago(t)
	var buf bytes.Buffer
	s, err := New(Job{
		Name:  "weekly-calendar",
		At:    ClockTime{Hour: 6},
		Guard: OnlyOn(time.Monday),
		Run: func(context.Context, time.Time) error {
			return apperrors.NewSinkError("economic_calendar", apperrors.ErrChannelNotFound)
		},
	}, loc, zerolog.New(&buf))
	if err != nil {
		t.Fatal(err)
	}

	monday := time.Date(2026, 1, 26, 6, 0, 0, 0, loc)
	if got := s.Fire(context.Background(), monday); got != OutcomeUndelivered {
		t.Errorf("outcome = %s, want undelivered", got)
	}

	want := time.Date(2026, 1, 27, 6, 0, 0, 0, loc)
	if next := s.NextFire(monday); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
	if !strings.Contains(buf.String(), `"outcome":"undelivered"`) {
		t.Errorf("fire not logged: %s", buf.String())
	}
}

func TestFireRecoversFromPanicAndErrors(t *testing.T) {
	loc := chicago(t)
	weekday := time.Date(2026, 1, 21, 8, 30, 0, 0, loc)

	panicky := newTestScheduler(t, EveryDay(), func(context.Context, time.Time) error {
		panic("boom")
	})
	if got := panicky.Fire(context.Background(), weekday); got != OutcomeFailed {
		t.Errorf("panic outcome = %s", got)
	}

	failing := newTestScheduler(t, EveryDay(), func(context.Context, time.Time) error {
		return errors.New("render failed")
	})
	if got := failing.Fire(context.Background(), weekday); got != OutcomeFailed {
		t.Errorf("error outcome = %s", got)
	}
}

func TestFireTimeoutBoundsDelivery(t *testing.T) {
	loc := chicago(t)
	s, err := New(Job{
		Name: "slow",
		At:   ClockTime{Hour: 8, Minute: 30},
		Run: func(ctx context.Context, _ time.Time) error {
			<-ctx.Done()
			return ctx.Err()
		},
		Timeout: 20 * time.Millisecond,
	}, loc, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if got := s.Fire(context.Background(), time.Date(2026, 1, 21, 8, 30, 0, 0, loc)); got != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", got)
	}
	if time.Since(start) > time.Second {
		t.Error("fire was not bounded by the job timeout")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s := newTestScheduler(t, Weekdays(), noop)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Errorf("second Start() error = %v", err)
	}
	if !s.Stats().Running {
		t.Error("expected running")
	}

	s.Stop()
	s.Stop()
	if s.Stats().Running {
		t.Error("expected stopped")
	}
	if err := s.Start(); !errors.Is(err, apperrors.ErrSchedulerStopped) {
		t.Errorf("Start after Stop = %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := newTestScheduler(t, Weekdays(), noop)
	s.Stop()
}

func TestNewValidation(t *testing.T) {
	loc := chicago(t)
	if _, err := New(Job{Name: "x"}, loc, zerolog.Nop()); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Errorf("missing run: %v", err)
	}
	if _, err := New(Job{Run: noop}, loc, zerolog.Nop()); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Errorf("missing name: %v", err)
	}
	if _, err := New(Job{Name: "x", Run: noop, At: ClockTime{Hour: 25}}, loc, zerolog.Nop()); err == nil {
		t.Error("expected error for hour 25")
	}
}

func TestParseGuard(t *testing.T) {
	cases := map[string]string{
		"weekdays":  "weekdays",
		"every_day": "every_day",
		"daily":     "every_day",
		"Monday":    "monday",
		"fri":       "friday",
	}
	for in, want := range cases {
		g, err := ParseGuard(in)
		if err != nil {
			t.Errorf("ParseGuard(%q) error = %v", in, err)
			continue
		}
		if g.String() != want {
			t.Errorf("ParseGuard(%q) = %s, want %s", in, g, want)
		}
	}
	if _, err := ParseGuard("fortnightly"); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Errorf("ParseGuard(fortnightly) = %v", err)
	}
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("06:00")
	if err != nil || c != (ClockTime{Hour: 6}) || c.String() != "06:00" {
		t.Errorf("ParseClockTime(06:00) = %v, %v", c, err)
	}
	if _, err := ParseClockTime("6am"); !errors.Is(err, apperrors.ErrInvalidSchedule) {
		t.Errorf("ParseClockTime(6am) = %v", err)
	}
}
