package commands

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justtrades-bot/internal/calendar"
	"justtrades-bot/internal/digest"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/market"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/scheduler"
	"justtrades-bot/internal/store"
)

var cst = time.FixedZone("CST", -6*60*60)

type fakeMarket struct {
	snap market.Snapshot
	err  error
}

func (f fakeMarket) Snapshot(context.Context) (market.Snapshot, error) { return f.snap, f.err }

func (f fakeMarket) Price(_ context.Context, symbol string) (models.Quote, error) {
	for _, q := range f.snap.Quotes {
		if q.Symbol == symbol {
			return q, nil
		}
	}
	return models.Quote{}, apperrors.ErrNoMarketData
}

type fakeJournal struct {
	mu     sync.Mutex
	alerts []models.TradeAlert
	closes []models.TradeClose
}

func (j *fakeJournal) LogAlert(_ context.Context, a models.TradeAlert) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.alerts = append(j.alerts, a)
	return "a1", nil
}

func (j *fakeJournal) LogClose(_ context.Context, c models.TradeClose) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closes = append(j.closes, c)
	return "c1", nil
}

func (j *fakeJournal) Stats(_ context.Context, since time.Time) (store.JournalStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return store.JournalStats{
		Since:  since,
		Alerts: len(j.alerts),
		Closed: 2,
		Wins:   1,
		Losses: 1,
		NetPnL: decimal.NewFromInt(25),
		AvgWin: decimal.NewFromInt(45),
		Best:   decimal.NewFromInt(45),
		Worst:  decimal.NewFromInt(-20),
	}, nil
}

type fakeGateway struct{}

func (fakeGateway) Latency() time.Duration { return 42 * time.Millisecond }
func (fakeGateway) Guilds() int             { return 1 }

type fixture struct {
	router  *Router
	sink    *notify.MemorySink
	journal *fakeJournal
	events  *calendar.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seed, err := calendar.DefaultEvents()
	require.NoError(t, err)
	events := calendar.NewStore(zerolog.Nop(), seed...)

	mkt := fakeMarket{snap: market.Snapshot{Quotes: []models.Quote{
		models.NewQuote("NQ=F", "NQ (Nasdaq)", 21545.25, 21500.25),
		models.NewQuote("AAPL", "Apple", 228, 230.5),
	}}}
	journal := &fakeJournal{}
	now := time.Date(2026, 1, 26, 9, 15, 0, 0, cst)

	sink := notify.NewMemorySink()
	r := NewRouter("!", sink, func() time.Time { return now }, zerolog.Nop())
	require.NoError(t, r.Register(Catalog(Deps{
		Calendar: events,
		Market:   mkt,
		Journal:  journal,
		Digest:   digest.NewBuilder(events, mkt, "CT", zerolog.Nop()),
		Weekly:   digest.Spec{Kind: digest.KindWeekly, Days: 7},
		Schedulers: func() []scheduler.Stats {
			return []scheduler.Stats{{Job: "weekly-calendar", Running: true, NextFire: time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)}}
		},
		Gateway: fakeGateway{},
		TZLabel: "CT",
		Rand:    rand.New(rand.NewSource(1)),
	})...))
	return &fixture{router: r, sink: sink, journal: journal, events: events}
}

func (f *fixture) prefix(content string) Reply {
	name, tokens, ok := f.router.ParseMessage(content)
	if !ok {
		return Reply{}
	}
	return f.router.Dispatch(context.Background(), Invocation{Style: StylePrefix, Name: name, Tokens: tokens, Author: "trader"})
}

func (f *fixture) slash(name string, options map[string]interface{}) Reply {
	return f.router.Dispatch(context.Background(), Invocation{Style: StyleSlash, Name: name, Options: options, Author: "trader"})
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRouter("!", notify.NewMemorySink(), nil, zerolog.Nop())
	noop := func(context.Context, *Request) (Result, error) { return Result{}, nil }
	require.NoError(t, r.Register(&Command{Name: "a", Aliases: []string{"b"}, Handler: noop}))
	assert.Error(t, r.Register(&Command{Name: "b", Handler: noop}))
	assert.Error(t, r.Register(&Command{Name: "c", Handler: noop, Params: []Param{{Name: "x", Rest: true}, {Name: "y"}}}))
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.prefix("!nope").Empty())
	assert.True(t, f.prefix("hello there").Empty())
}

func TestAlertPostsAndJournals(t *testing.T) {
	f := newFixture(t)
	reply := f.prefix("!alert nq BUY 21500 21480 21560 Breaking resistance @everyone")
	assert.Equal(t, "Trade alert posted to #trade-alerts!", reply.Content)
	assert.False(t, reply.Ephemeral)

	posts := f.sink.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.ChannelTradeAlerts, posts[0].Channel)
	msg := posts[0].Message
	assert.Equal(t, "TRADE ALERT: NQ", msg.Title)
	require.Len(t, msg.Fields, 7)
	assert.Equal(t, "**LONG**", msg.Fields[0].Value)
	assert.Equal(t, "**21,500.00**", msg.Fields[1].Value)
	assert.Equal(t, "**1:3.0**", msg.Fields[5].Value)
	assert.NotContains(t, msg.Fields[6].Value, "@everyone")
	assert.Equal(t, "Alert by trader | 09:15 AM CT", msg.Footer)

	require.Len(t, f.journal.alerts, 1)
	assert.Equal(t, models.SideLong, f.journal.alerts[0].Side)
}

func TestAlertUsageOnMissingArgs(t *testing.T) {
	f := newFixture(t)
	reply := f.prefix("!alert NQ BUY")
	assert.True(t, strings.HasPrefix(reply.Content, "Usage: `!alert <symbol> <action> <entry> <stop> <target> [notes...]`"))
	assert.Contains(t, reply.Content, "Example: `!alert NQ BUY 21500 21480 21560 Breaking resistance`")
	assert.Empty(t, f.sink.Posts())
	assert.Empty(t, f.journal.alerts)
}

func TestMissingChannelFallsBackInline(t *testing.T) {
	f := newFixture(t)
	f.sink.Missing[models.ChannelDailyBias] = true

	reply := f.prefix("!bias bearish Failed breakout overnight")
	require.NotNil(t, reply.Message)
	assert.Equal(t, "Daily Bias: BEARISH", reply.Message.Title)
	assert.Equal(t, "Failed breakout overnight", reply.Message.Description)
	assert.Equal(t, notify.ColorRed, reply.Message.Color)
}

func TestSlashAcksEphemerally(t *testing.T) {
	f := newFixture(t)
	reply := f.slash("setup", map[string]interface{}{
		"symbol": "ES", "direction": "short", "entry": 6100.0, "stop": 6110.0, "target": 6070.0,
	})
	assert.Equal(t, "Chart setup posted!", reply.Content)
	assert.True(t, reply.Ephemeral)

	posts := f.sink.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.ChannelChartSetups, posts[0].Channel)
	assert.Equal(t, "ES - SHORT", posts[0].Message.Title)
	assert.Equal(t, "10.00 pts", posts[0].Message.Fields[3].Value)
	assert.Equal(t, "1:3.0", posts[0].Message.Fields[5].Value)
}

func TestSlashUsageIsEphemeral(t *testing.T) {
	f := newFixture(t)
	reply := f.slash("setup", map[string]interface{}{"symbol": "ES"})
	assert.True(t, reply.Ephemeral)
	assert.Contains(t, reply.Content, "Usage: `/setup <symbol>")
}

func TestLevelsOptionalSecondLevels(t *testing.T) {
	f := newFixture(t)
	f.prefix("!levels ES 6050 6120 overnight high in play")
	posts := f.sink.Posts()
	require.Len(t, posts, 1)
	fields := posts[0].Message.Fields
	assert.Equal(t, "S1: **6,050.00**", fields[0].Value)
	assert.Equal(t, "R1: **6,120.00**", fields[1].Value)
	assert.Equal(t, "overnight high in play", fields[2].Value)
}

func TestCloseAndStats(t *testing.T) {
	f := newFixture(t)
	reply := f.prefix("!close NQ WIN 45 Hit target perfectly")
	assert.Equal(t, "Trade close posted to #trade-alerts!", reply.Content)
	posts := f.sink.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "NQ - WINNER", posts[0].Message.Title)
	assert.Equal(t, "**+45.00 points**", posts[0].Message.Description)
	require.Len(t, f.journal.closes, 1)

	stats := f.prefix("!stats")
	require.NotNil(t, stats.Message)
	assert.Equal(t, "Trading Stats - Last 30 Days", stats.Message.Title)
	assert.Equal(t, "50.0%", stats.Message.Fields[2].Value)
	assert.Equal(t, "**+25.00 pts**", stats.Message.Fields[4].Value)
}

func TestUpdateRequiresText(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.prefix("!update NQ").Content, "Usage:")
	assert.Equal(t, "Update posted to #trade-alerts!", f.prefix("!update NQ Stop moved to breakeven").Content)
	assert.Equal(t, "**Stop moved to breakeven**", f.sink.Posts()[0].Message.Description)
}

func TestInvalidSymbolIsUsageError(t *testing.T) {
	f := newFixture(t)
	reply := f.prefix("!update <@123> moved stop")
	assert.Contains(t, reply.Content, "invalid symbol format")
	assert.Empty(t, f.sink.Posts())
}

func TestMarketAndPrice(t *testing.T) {
	f := newFixture(t)
	reply := f.prefix("!market")
	require.NotNil(t, reply.Message)
	assert.Equal(t, "Live Market Data", reply.Message.Title)
	assert.Equal(t, "Updated: 09:15 AM CT", reply.Message.Description)

	price := f.prefix("!price aapl")
	require.NotNil(t, price.Message)
	assert.Equal(t, "AAPL", price.Message.Title)
	assert.Equal(t, "**$228.00**", price.Message.Fields[0].Value)
	assert.Equal(t, notify.ColorRed, price.Message.Color)

	assert.Equal(t, "No market data for MSFT.", f.prefix("!price msft").Content)
}

func TestMarketUnavailablePlaceholder(t *testing.T) {
	sink := notify.NewMemorySink()
	r := NewRouter("!", sink, nil, zerolog.Nop())
	require.NoError(t, r.Register(Catalog(Deps{
		Calendar: calendar.NewStore(zerolog.Nop()),
		Market:   fakeMarket{err: errors.New("timeout")},
	})...))

	reply := r.Dispatch(context.Background(), Invocation{Style: StylePrefix, Name: "market"})
	assert.Equal(t, digest.MarketUnavailable, reply.Content)
}

func TestEducationCommands(t *testing.T) {
	f := newFixture(t)

	def := f.prefix("!define SUPPORT")
	require.NotNil(t, def.Message)
	assert.Equal(t, "Support Level", def.Message.Title)

	missing := f.prefix("!define unicorn")
	assert.True(t, strings.HasPrefix(missing.Content, "Term 'unicorn' not found."))
	assert.Contains(t, missing.Content, "**Available terms:** support")

	assert.Contains(t, f.prefix("!define").Content, "Usage: `!define [term]`")
	assert.Equal(t, "Trading Tip", f.prefix("!tip").Message.Title)
	assert.Contains(t, f.prefix("!terms").Message.Description, "- **support**")

	ack := f.prefix("!postterm support")
	assert.Equal(t, "Posted 'support' to glossary channel!", ack.Content)
	assert.Equal(t, models.ChannelTradingGlossary, f.sink.Posts()[0].Channel)
}

func TestCalendarCommands(t *testing.T) {
	f := newFixture(t)

	cal := f.prefix("!calendar")
	require.NotNil(t, cal.Message)
	assert.Equal(t, "Economic Calendar - Next 7 Days", cal.Message.Title)
	assert.Len(t, cal.Message.Fields, 4)

	assert.Equal(t, "No economic events in the next 0 days.", f.prefix("!calendar 0").Content)
	assert.Contains(t, f.prefix("!calendar soon").Content, "Usage:")

	added := f.prefix(`!event-add 2026-01-27 07:30 "Durable Goods @here" medium`)
	assert.Equal(t, "Added: **Durable Goods @\u200bhere** on 2026-01-27 at 07:30 CT", added.Content)
	assert.Len(t, f.prefix("!calendar 1").Message.Fields, 1)

	bad := f.prefix(`!event-add 01/27/2026 07:30 "Durable Goods"`)
	assert.Contains(t, bad.Content, "expected YYYY-MM-DD")

	before := f.events.Len()
	unquoted := f.prefix("!event-add 2026-02-11 07:30 CPI Report HIGH")
	assert.Contains(t, unquoted.Content, "impact must be HIGH, MEDIUM or LOW")
	assert.Contains(t, unquoted.Content, "Usage:")
	assert.Contains(t, f.prefix(`!event-add 2026-02-11 07:30 "Bogus" banana`).Content, "impact must be")
	assert.Equal(t, before, f.events.Len())

	short := f.prefix(`!event-add 2026-02-11 07:30 "Retail Sales" med`)
	assert.Contains(t, short.Content, "Added: **Retail Sales**")
	assert.Equal(t, before+1, f.events.Len())
	assert.Equal(t, "Removed 1 event(s) matching 'retail'.", f.prefix("!event-remove retail").Content)

	assert.Equal(t, "Removed 1 event(s) matching 'durable'.", f.prefix("!event-remove durable").Content)
	assert.Equal(t, "No events matching 'durable' found.", f.prefix("!event-remove durable").Content)

	all := f.prefix("!events 3")
	require.NotNil(t, all.Message)
	assert.Len(t, all.Message.Fields, 3)
	assert.Equal(t, "...and 5 more", all.Message.Footer)
}

func TestPostingCommandsAreMarked(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"alert", "close", "update", "setup", "levels", "bias", "post-calendar", "postterm"} {
		cmd, ok := f.router.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, cmd.Posts, name)
	}
	for _, name := range []string{"market", "price", "calendar", "stats"} {
		cmd, ok := f.router.Lookup(name)
		require.True(t, ok, name)
		assert.False(t, cmd.Posts, name)
	}
}

func TestPostCalendar(t *testing.T) {
	f := newFixture(t)
	reply := f.slash("post-calendar", nil)
	assert.Equal(t, "Calendar posted!", reply.Content)

	posts := f.sink.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, models.ChannelEconomicCalendar, posts[0].Channel)
	assert.Equal(t, "Weekly Economic Calendar", posts[0].Message.Title)
	assert.Equal(t, "Week of January 26, 2026", posts[0].Message.Description)
}

func TestHelpAndStatus(t *testing.T) {
	f := newFixture(t)

	help := f.prefix("!help")
	require.NotNil(t, help.Message)
	assert.Equal(t, "JustTrades Bot Commands", help.Message.Title)
	assert.Equal(t, string(CategoryMarket), help.Message.Fields[0].Name)
	assert.Contains(t, help.Message.Fields[0].Value, "`!price <symbol>` - Price for any symbol")

	status := f.prefix("!status")
	require.NotNil(t, status.Message)
	assert.Equal(t, "42ms", status.Message.Fields[1].Value)
	assert.Equal(t, "09:15 AM", status.Message.Fields[3].Value)
	assert.Equal(t, "Next weekly-calendar", status.Message.Fields[4].Name)
	assert.Equal(t, "Mon Feb 02 06:00 AM CT", status.Message.Fields[4].Value)
}

func TestHandlerPanicIsContained(t *testing.T) {
	r := NewRouter("!", notify.NewMemorySink(), nil, zerolog.Nop())
	require.NoError(t, r.Register(&Command{
		Name:    "boom",
		Handler: func(context.Context, *Request) (Result, error) { panic("kaboom") },
	}))
	reply := r.Dispatch(context.Background(), Invocation{Style: StylePrefix, Name: "boom"})
	assert.Equal(t, "Something went wrong running that command.", reply.Content)
}
