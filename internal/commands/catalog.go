package commands

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"justtrades-bot/internal/calendar"
	"justtrades-bot/internal/digest"
	"justtrades-bot/internal/market"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/scheduler"
	"justtrades-bot/internal/store"
)

// MarketService provides quotes.
type MarketService interface {
	Snapshot(ctx context.Context) (market.Snapshot, error)
	Price(ctx context.Context, symbol string) (models.Quote, error)
}

// Journal records trades. A nil Journal disables journaling.
type Journal interface {
	LogAlert(ctx context.Context, alert models.TradeAlert) (string, error)
	LogClose(ctx context.Context, close models.TradeClose) (string, error)
	Stats(ctx context.Context, since time.Time) (store.JournalStats, error)
}

// Gateway reports chat connection details for the status command.
type Gateway interface {
	Latency() time.Duration
	Guilds() int
}

// Deps are the collaborators shared by all commands.
type Deps struct {
	Calendar   *calendar.Store
	Market     MarketService
	Journal    Journal
	Digest     *digest.Builder
	Weekly     digest.Spec
	Schedulers func() []scheduler.Stats
	Gateway    Gateway
	TZLabel    string
	Rand       *rand.Rand
}

// lockedRand serializes access to a *rand.Rand shared by concurrent handlers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) with(fn func(*rand.Rand) string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.rng)
}

// Catalog builds every command bound to deps, in help order.
func Catalog(deps Deps) []*Command {
	if deps.TZLabel == "" {
		deps.TZLabel = "CT"
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	h := &handlers{deps: deps, rng: &lockedRand{rng: deps.Rand}}

	var cmds []*Command
	cmds = append(cmds, h.marketCommands()...)
	cmds = append(cmds, h.educationCommands()...)
	cmds = append(cmds, h.tradeCommands()...)
	cmds = append(cmds, h.analysisCommands()...)
	cmds = append(cmds, h.calendarCommands()...)
	cmds = append(cmds, h.journalCommands()...)
	cmds = append(cmds, h.metaCommands()...)
	return cmds
}

type handlers struct {
	deps Deps
	rng  *lockedRand
}

// clock formats now as "03:04 PM CT".
func (h *handlers) clock(now time.Time) string {
	return now.Format("03:04 PM") + " " + h.deps.TZLabel
}
