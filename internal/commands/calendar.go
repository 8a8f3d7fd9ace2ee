package commands

import (
	"context"
	"fmt"
	"strings"

	"justtrades-bot/internal/digest"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/security"
)

const (
	defaultCalendarDays = 7
	maxCalendarDays     = 365
	maxEventFields      = notify.MaxFields
)

func (h *handlers) calendarCommands() []*Command {
	return []*Command{
		{
			Name:        "calendar",
			Description: "Upcoming economic events",
			Category:    CategoryCalendar,
			Example:     "!calendar 14",
			Params: []Param{
				{Name: "days", Description: "Number of days to look ahead (default: 7)", Type: TypeInt, Default: defaultCalendarDays},
			},
			Handler: h.calendar,
		},
		{
			Name:        "event-add",
			Aliases:     []string{"eventadd"},
			Description: "Add an economic event to the calendar",
			Category:    CategoryCalendar,
			Example:     `!event-add 2026-02-11 07:30 "CPI Report" HIGH 2.9%`,
			Params: []Param{
				{Name: "date", Description: "Date (YYYY-MM-DD)", Type: TypeString, Required: true},
				{Name: "time", Description: "Time in CT (HH:MM)", Type: TypeString, Required: true},
				{Name: "event_name", Description: "Event name", Type: TypeString, Required: true},
				{Name: "impact", Description: "Impact level (HIGH, MEDIUM, LOW)", Type: TypeString, Default: string(models.ImpactHigh)},
				{Name: "forecast", Description: "Forecast value (optional)", Type: TypeString, Default: models.DefaultForecast},
			},
			Handler: h.eventAdd,
		},
		{
			Name:        "event-remove",
			Aliases:     []string{"eventremove"},
			Description: "Remove events whose name contains the text",
			Category:    CategoryCalendar,
			Example:     "!event-remove FOMC Minutes",
			Params: []Param{
				{Name: "name", Description: "Text to match against event names", Type: TypeString, Required: true, Rest: true},
			},
			Handler: h.eventRemove,
		},
		{
			Name:        "events",
			Description: "List every event in the calendar",
			Category:    CategoryCalendar,
			Params: []Param{
				{Name: "limit", Description: "Maximum events to show (default: 25)", Type: TypeInt, Default: maxEventFields},
			},
			Handler: h.events,
		},
		{
			Name:        "post-calendar",
			Aliases:     []string{"postcalendar"},
			Description: "Post the weekly calendar to the economic-calendar channel",
			Category:    CategoryCalendar,
			Slow:        true,
			Posts:       true,
			Handler:     h.postCalendar,
		},
	}
}

func (h *handlers) calendar(_ context.Context, req *Request) (Result, error) {
	days := req.Args.Int("days")
	if days < 0 || days > maxCalendarDays {
		return Result{}, apperrors.NewUsageError(req.Command.Name, "", fmt.Sprintf("days must be between 0 and %d", maxCalendarDays))
	}

	events := h.deps.Calendar.Upcoming(req.Now, days)
	if len(events) == 0 {
		return Text("No economic events in the next %d days.", days), nil
	}

	msg := notify.Message{
		Kind:      notify.KindInfo,
		Title:     fmt.Sprintf("Economic Calendar - Next %d Days", days),
		Color:     notify.ColorBlue,
		Timestamp: req.Now,
	}
	h.addEventFields(&msg, events)
	return Embed(msg), nil
}

func (h *handlers) addEventFields(msg *notify.Message, events []models.CalendarEvent) {
	for i, e := range events {
		if i == maxEventFields {
			msg.Footer = fmt.Sprintf("...and %d more", len(events)-maxEventFields)
			break
		}
		msg.Fields = append(msg.Fields, digest.EventField(e, h.deps.TZLabel))
	}
}

func (h *handlers) eventAdd(_ context.Context, req *Request) (Result, error) {
	date := strings.TrimSpace(req.Args.String("date"))
	if err := security.ValidateDate(date); err != nil {
		return Result{}, apperrors.NewUsageError(req.Command.Name, "", err.Error())
	}
	impact, ok := models.LookupImpact(req.Args.String("impact"))
	if !ok {
		return Result{}, apperrors.NewUsageError(req.Command.Name, "",
			"impact must be HIGH, MEDIUM or LOW (quote event names that contain spaces)")
	}
	name := security.SanitizeText(req.Args.String("event_name"))
	clock := security.SanitizeText(req.Args.String("time"))

	e := models.NewCalendarEvent(
		date,
		clock,
		name,
		string(impact),
		security.SanitizeText(req.Args.String("forecast")),
	)
	h.deps.Calendar.Add(e)

	req.Logger.Info().Str("date", date).Str("event_name", name).Str("author", req.Author).Msg("Calendar event added")
	return Text("Added: **%s** on %s at %s %s", name, date, e.TimeLabel(), h.deps.TZLabel), nil
}

func (h *handlers) eventRemove(_ context.Context, req *Request) (Result, error) {
	needle := req.Args.String("name")
	n := h.deps.Calendar.RemoveByNameSubstring(needle)
	shown := security.SanitizeText(needle)
	if n == 0 {
		return Text("No events matching '%s' found.", shown), nil
	}
	req.Logger.Info().Str("needle", needle).Int("removed", n).Str("author", req.Author).Msg("Calendar events removed")
	return Text("Removed %d event(s) matching '%s'.", n, shown), nil
}

func (h *handlers) events(_ context.Context, req *Request) (Result, error) {
	limit := req.Args.Int("limit")
	if limit <= 0 || limit > maxEventFields {
		limit = maxEventFields
	}
	events, omitted := h.deps.Calendar.ListAll(limit)
	if len(events) == 0 {
		return Text("No events in the calendar."), nil
	}

	msg := notify.Message{
		Kind:        notify.KindInfo,
		Title:       "All Calendar Events",
		Description: fmt.Sprintf("%d event(s) scheduled", len(events)+omitted),
		Color:       notify.ColorBlue,
	}
	for _, e := range events {
		msg.Fields = append(msg.Fields, digest.EventField(e, h.deps.TZLabel))
	}
	if omitted > 0 {
		msg.Footer = fmt.Sprintf("...and %d more", omitted)
	}
	return Embed(msg), nil
}

func (h *handlers) postCalendar(ctx context.Context, req *Request) (Result, error) {
	spec := h.deps.Weekly
	if spec.Kind == "" {
		spec = digest.Spec{Kind: digest.KindWeekly, Days: defaultCalendarDays}
	}
	msg := h.deps.Digest.Render(h.deps.Digest.Build(ctx, spec, req.Now))
	return PostTo(models.ChannelEconomicCalendar, msg, "Calendar posted!"), nil
}
