package models

import (
	"strings"
	"time"
)

// DateLayout is the storage format of CalendarEvent.Date.
const DateLayout = "2006-01-02"

// Impact is the expected market impact of an economic event.
type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

// DefaultForecast is used when an event is added without a forecast.
const DefaultForecast = "N/A"

// ParseImpact upper-cases the input and defaults to HIGH when empty.
// Unknown values are kept as given so they still render.
func ParseImpact(s string) Impact {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ImpactHigh
	}
	return Impact(s)
}

// LookupImpact resolves user input to a known impact. It accepts HIGH,
// MEDIUM, MED and LOW in any case; empty input means HIGH.
func LookupImpact(s string) (Impact, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "HIGH":
		return ImpactHigh, true
	case "MEDIUM", "MED":
		return ImpactMedium, true
	case "LOW":
		return ImpactLow, true
	default:
		return "", false
	}
}

// Label returns the short tag shown next to an event title.
func (i Impact) Label() string {
	switch i {
	case ImpactHigh:
		return "HIGH"
	case ImpactMedium:
		return "MED"
	default:
		return "LOW"
	}
}

// CalendarEvent is an economic-calendar entry.
type CalendarEvent struct {
	Date     string `yaml:"date" json:"date"`
	Time     string `yaml:"time" json:"time"`
	Name     string `yaml:"event" json:"event"`
	Impact   Impact `yaml:"impact" json:"impact"`
	Forecast string `yaml:"forecast" json:"forecast"`
}

// NewCalendarEvent builds an event with impact and forecast normalized.
func NewCalendarEvent(date, clock, name, impact, forecast string) CalendarEvent {
	e := CalendarEvent{
		Date:     strings.TrimSpace(date),
		Time:     strings.TrimSpace(clock),
		Name:     strings.TrimSpace(name),
		Impact:   Impact(impact),
		Forecast: forecast,
	}
	return e.Normalized()
}

// Normalized returns a copy with Impact upper-cased (HIGH when empty) and
// Forecast defaulted.
func (e CalendarEvent) Normalized() CalendarEvent {
	e.Impact = ParseImpact(string(e.Impact))
	if strings.TrimSpace(e.Forecast) == "" {
		e.Forecast = DefaultForecast
	}
	return e
}

// Day parses Date as a civil date at UTC midnight.
func (e CalendarEvent) Day() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// TimeLabel returns the event time or TBD when unset.
func (e CalendarEvent) TimeLabel() string {
	if strings.TrimSpace(e.Time) == "" {
		return "TBD"
	}
	return e.Time
}
