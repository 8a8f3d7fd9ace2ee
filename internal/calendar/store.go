// Package calendar holds the in-memory economic calendar.
package calendar

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/models"
	"justtrades-bot/pkg/utils"
)

// Store is the process-wide economic calendar. It is safe for concurrent use
// by command handlers and scheduled jobs. Mutations are not persisted.
type Store struct {
	mu     sync.RWMutex
	events []models.CalendarEvent
	logger zerolog.Logger
}

// NewStore creates a store seeded with the given events.
func NewStore(logger zerolog.Logger, seed ...models.CalendarEvent) *Store {
	s := &Store{
		events: make([]models.CalendarEvent, 0, len(seed)),
		logger: logger.With().Str("component", "calendar").Logger(),
	}
	for _, e := range seed {
		s.events = append(s.events, e.Normalized())
	}
	return s
}

// Add appends an event. Duplicates are allowed and nothing is validated here;
// events with unparseable dates are simply never listed.
func (s *Store) Add(e models.CalendarEvent) {
	e = e.Normalized()

	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()

	s.logger.Debug().
		Str("date", e.Date).
		Str("event", e.Name).
		Str("impact", string(e.Impact)).
		Msg("Calendar event added")
}

// RemoveByNameSubstring removes every event whose name contains needle,
// ignoring case, and returns how many were removed. An empty needle matches
// nothing.
func (s *Store) RemoveByNameSubstring(needle string) int {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// clear the tail so removed events are not retained by the backing array
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = models.CalendarEvent{}
	}
	s.events = kept

	if removed > 0 {
		s.logger.Info().Str("needle", needle).Int("removed", removed).Msg("Calendar events removed")
	}
	return removed
}

// ListInRange returns the events whose date lies in [from, to], comparing
// civil dates only. Each bound is reduced to its date in its own location.
// Results are sorted by date, keeping insertion order within a day. Events
// with malformed dates are skipped and logged.
func (s *Store) ListInRange(from, to time.Time) []models.CalendarEvent {
	lo, hi := utils.CivilDate(from), utils.CivilDate(to)
	if lo.After(hi) {
		return []models.CalendarEvent{}
	}

	dated := s.snapshot()
	out := make([]models.CalendarEvent, 0, len(dated))
	for _, d := range dated {
		if d.day.Before(lo) || d.day.After(hi) {
			continue
		}
		out = append(out, d.event)
	}
	return out
}

// Upcoming returns the events from now's date through days later, inclusive.
func (s *Store) Upcoming(now time.Time, days int) []models.CalendarEvent {
	if days < 0 {
		days = 0
	}
	return s.ListInRange(now, now.AddDate(0, 0, days))
}

// ListAll returns every well-formed event sorted by date. A positive limit
// caps the result; omitted reports how many events were cut.
func (s *Store) ListAll(limit int) (events []models.CalendarEvent, omitted int) {
	dated := s.snapshot()
	events = make([]models.CalendarEvent, 0, len(dated))
	for _, d := range dated {
		events = append(events, d.event)
	}
	if limit > 0 && len(events) > limit {
		omitted = len(events) - limit
		events = events[:limit]
	}
	return events, omitted
}

// Len returns the number of stored events, including malformed ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

type datedEvent struct {
	day   time.Time
	event models.CalendarEvent
}

// snapshot copies the events under the read lock, drops malformed dates and
// sorts the rest by day.
func (s *Store) snapshot() []datedEvent {
	s.mu.RLock()
	events := make([]models.CalendarEvent, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	dated := make([]datedEvent, 0, len(events))
	for _, e := range events {
		day, err := e.Day()
		if err != nil {
			s.logger.Warn().
				Str("event", e.Name).
				Str("date", e.Date).
				Str("reason", "malformed date").
				Err(err).
				Msg("Calendar event skipped")
			continue
		}
		dated = append(dated, datedEvent{day: day, event: e})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].day.Before(dated[j].day)
	})
	return dated
}
