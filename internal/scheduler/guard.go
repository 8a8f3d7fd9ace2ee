package scheduler

import (
	"fmt"
	"strings"
	"time"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/pkg/utils"
)

// Guard decides at fire time whether a job runs on the given local day.
type Guard interface {
	Allow(local time.Time) bool
	String() string
}

type weekdaysGuard struct{}

func (weekdaysGuard) Allow(local time.Time) bool { return !utils.IsWeekend(local) }
func (weekdaysGuard) String() string             { return "weekdays" }

type everyDayGuard struct{}

func (everyDayGuard) Allow(time.Time) bool { return true }
func (everyDayGuard) String() string       { return "every_day" }

type onlyOnGuard struct{ day time.Weekday }

func (g onlyOnGuard) Allow(local time.Time) bool { return local.Weekday() == g.day }
func (g onlyOnGuard) String() string             { return strings.ToLower(g.day.String()) }

// Weekdays skips Saturday and Sunday.
func Weekdays() Guard { return weekdaysGuard{} }

// EveryDay never skips.
func EveryDay() Guard { return everyDayGuard{} }

// OnlyOn runs on a single weekday.
func OnlyOn(day time.Weekday) Guard { return onlyOnGuard{day: day} }

// ParseGuard parses "weekdays", "every_day" (or "daily") and weekday names.
func ParseGuard(s string) (Guard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekdays":
		return Weekdays(), nil
	case "every_day", "daily", "":
		return EveryDay(), nil
	}
	if day, ok := utils.ParseWeekday(s); ok {
		return OnlyOn(day), nil
	}
	return nil, apperrors.Wrap(apperrors.ErrInvalidSchedule, fmt.Sprintf("unknown guard %q", s))
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	h, m, err := utils.ParseClock(s)
	if err != nil {
		return ClockTime{}, apperrors.Wrap(apperrors.ErrInvalidSchedule, err.Error())
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
