// Package digest builds the scheduled calendar and market summaries.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/market"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/pkg/utils"
)

// MarketUnavailable is shown in place of quotes when none could be fetched.
const MarketUnavailable = "Market data unavailable"

// Kind selects the digest layout.
type Kind string

const (
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
)

// Window is an inclusive civil-date range.
type Window struct {
	Label string
	From  time.Time
	To    time.Time
}

// Today is the window covering now's date only.
func Today(now time.Time) Window {
	return Window{Label: "Today", From: now, To: now}
}

// NextDays covers now's date through n days later.
func NextDays(now time.Time, n int) Window {
	if n < 0 {
		n = 0
	}
	return Window{Label: fmt.Sprintf("Next %d Days", n), From: now, To: now.AddDate(0, 0, n)}
}

// Spec configures one digest.
type Spec struct {
	Kind          Kind
	Days          int // 0 means today only
	IncludeMarket bool
}

// Window returns the date range the spec covers at now.
func (s Spec) Window(now time.Time) Window {
	if s.Days <= 0 {
		return Today(now)
	}
	return NextDays(now, s.Days)
}

// Digest is the data behind one rendered summary.
type Digest struct {
	Kind              Kind
	Now               time.Time
	Window            Window
	Events            []models.CalendarEvent
	Quotes            []models.Quote
	MarketRequested   bool
	MarketUnavailable bool
}

// EventSource lists calendar events in a civil-date range.
type EventSource interface {
	ListInRange(from, to time.Time) []models.CalendarEvent
}

// MarketSource fetches the futures snapshot.
type MarketSource interface {
	Snapshot(ctx context.Context) (market.Snapshot, error)
}

// Builder assembles digests from the calendar and market data.
type Builder struct {
	events  EventSource
	market  MarketSource
	tzLabel string
	logger  zerolog.Logger
}

// NewBuilder creates a Builder. market may be nil, in which case market
// sections always show the unavailable notice.
func NewBuilder(events EventSource, market MarketSource, tzLabel string, logger zerolog.Logger) *Builder {
	if tzLabel == "" {
		tzLabel = "CT"
	}
	return &Builder{
		events:  events,
		market:  market,
		tzLabel: tzLabel,
		logger:  logging.WithComponent(logger, "digest"),
	}
}

// Build collects the events and, when requested, quotes for spec at now.
// A market failure never fails the digest.
func (b *Builder) Build(ctx context.Context, spec Spec, now time.Time) Digest {
	w := spec.Window(now)
	d := Digest{
		Kind:            spec.Kind,
		Now:             now,
		Window:          w,
		Events:          b.events.ListInRange(w.From, w.To),
		MarketRequested: spec.IncludeMarket,
	}

	if spec.IncludeMarket {
		if b.market == nil {
			d.MarketUnavailable = true
		} else if snap, err := b.market.Snapshot(ctx); err != nil {
			b.logger.Warn().Err(err).Msg("Market snapshot failed, using placeholder")
			d.MarketUnavailable = true
		} else {
			d.Quotes = snap.Quotes
		}
	}
	return d
}

// Render formats a digest as a channel message.
func (b *Builder) Render(d Digest) notify.Message {
	switch d.Kind {
	case KindDaily:
		return b.renderDaily(d)
	default:
		return b.renderWeekly(d)
	}
}

// Deliver builds, renders and posts a digest to channel.
func (b *Builder) Deliver(ctx context.Context, sink notify.Sink, channel models.ChannelKey, spec Spec, now time.Time) error {
	msg := b.Render(b.Build(ctx, spec, now))
	return sink.Post(ctx, channel, msg)
}

const cautionFooter = "Trade carefully around high-impact events!"

func (b *Builder) renderDaily(d Digest) notify.Message {
	msg := notify.Message{
		Kind:        notify.KindDigest,
		Title:       "Daily Market Briefing",
		Description: d.Now.Format("Monday, January 02, 2006"),
		Color:       notify.ColorBlue,
		Timestamp:   d.Now,
		Footer:      cautionFooter,
	}

	msg.Fields = append(msg.Fields, marketFields(d)...)
	if len(d.Events) == 0 {
		msg.AddField("Economic Calendar", "No scheduled economic events today.", false)
		return msg
	}
	b.addEvents(&msg, d.Events, notify.MaxFields-len(msg.Fields))
	return msg
}

func (b *Builder) renderWeekly(d Digest) notify.Message {
	msg := notify.Message{
		Kind:        notify.KindDigest,
		Title:       "Weekly Economic Calendar",
		Description: "Week of " + d.Now.Format("January 02, 2006"),
		Color:       notify.ColorGold,
		Timestamp:   d.Now,
		Footer:      cautionFooter,
	}

	if len(d.Events) == 0 {
		msg.Description += "\n\n*No major economic events this week.*"
	}
	quotes := marketFields(d)
	b.addEvents(&msg, d.Events, notify.MaxFields-len(quotes))
	msg.Fields = append(msg.Fields, quotes...)
	return msg
}

// addEvents appends at most room event fields. Events that do not fit are
// counted in the footer.
func (b *Builder) addEvents(msg *notify.Message, events []models.CalendarEvent, room int) {
	if room < 0 {
		room = 0
	}
	for i, e := range events {
		if i == room {
			msg.Footer = fmt.Sprintf("...and %d more | %s", len(events)-room, cautionFooter)
			return
		}
		msg.Fields = append(msg.Fields, EventField(e, b.tzLabel))
	}
}

// marketFields returns the quote fields, or the placeholder when quotes
// were requested but could not be fetched. The result never exceeds
// MaxFields.
func marketFields(d Digest) []notify.Field {
	if !d.MarketRequested {
		return nil
	}
	if d.MarketUnavailable {
		return []notify.Field{{Name: "Futures", Value: MarketUnavailable}}
	}
	fields := make([]notify.Field, 0, len(d.Quotes))
	for _, q := range d.Quotes {
		if len(fields) == notify.MaxFields {
			break
		}
		fields = append(fields, QuoteField(q))
	}
	return fields
}

// EventField renders one calendar event as "[HIGH] name" over
// "date at time CT" and its forecast.
func EventField(e models.CalendarEvent, tzLabel string) notify.Field {
	return notify.Field{
		Name:  fmt.Sprintf("[%s] %s", e.Impact.Label(), e.Name),
		Value: fmt.Sprintf("%s at %s %s\nForecast: %s", e.Date, e.TimeLabel(), tzLabel, e.Forecast),
	}
}

// QuoteField renders a quote with its change from the previous close.
func QuoteField(q models.Quote) notify.Field {
	change := q.Change()
	return notify.Field{
		Name: q.Name,
		Value: fmt.Sprintf("**%s**\n%s (%s)",
			utils.FormatPrice(q.Price),
			utils.FormatSigned(change),
			utils.FormatPercent(q.ChangePercent())),
		Inline: true,
	}
}
