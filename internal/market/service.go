package market

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"justtrades-bot/internal/config"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/security"
)

// Symbol is a tracked instrument and its display name.
type Symbol struct {
	Symbol string
	Name   string
}

// DefaultFutures is the futures watchlist shown by the market snapshot.
var DefaultFutures = []Symbol{
	{"NQ=F", "NQ (Nasdaq)"},
	{"ES=F", "ES (S&P 500)"},
	{"YM=F", "YM (Dow)"},
	{"RTY=F", "RTY (Russell)"},
	{"GC=F", "Gold"},
	{"CL=F", "Crude Oil"},
}

// SymbolsFromConfig converts configured symbols, falling back to DefaultFutures.
func SymbolsFromConfig(cfg []config.SymbolConfig) []Symbol {
	if len(cfg) == 0 {
		return DefaultFutures
	}
	out := make([]Symbol, 0, len(cfg))
	for _, s := range cfg {
		name := s.Name
		if name == "" {
			name = s.Symbol
		}
		out = append(out, Symbol{Symbol: s.Symbol, Name: name})
	}
	return out
}

// Snapshot is a set of quotes fetched together. Symbols that could not be
// fetched are listed in Missing.
type Snapshot struct {
	Quotes    []models.Quote
	Missing   []string
	FetchedAt time.Time
}

// Service combines a quote source with the tracked watchlist.
type Service struct {
	source  Source
	symbols []Symbol
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService creates a market service.
func NewService(source Source, symbols []Symbol, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		source:  source,
		symbols: symbols,
		timeout: timeout,
		logger:  logging.WithComponent(logger, "market"),
	}
}

// Symbols returns the tracked watchlist.
func (s *Service) Symbols() []Symbol {
	return s.symbols
}

type fetchResult struct {
	quote models.Quote
	err   error
}

// Snapshot fetches every tracked symbol concurrently, keeping watchlist
// order. It fails with ErrNoMarketData only when no quote could be fetched.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := iter.Map(s.symbols, func(sym *Symbol) fetchResult {
		q, err := s.source.Quote(ctx, sym.Symbol)
		if err == nil {
			q.Name = sym.Name
		}
		return fetchResult{quote: q, err: err}
	})

	snap := Snapshot{FetchedAt: time.Now()}
	for i, r := range results {
		if r.err != nil {
			s.logger.Warn().Str("symbol", s.symbols[i].Symbol).Err(r.err).Msg("Quote unavailable")
			snap.Missing = append(snap.Missing, s.symbols[i].Symbol)
			continue
		}
		snap.Quotes = append(snap.Quotes, r.quote)
	}

	if len(snap.Quotes) == 0 {
		return snap, apperrors.ErrNoMarketData
	}
	return snap, nil
}

// Price fetches a single symbol. The symbol is validated and upper-cased.
func (s *Service) Price(ctx context.Context, symbol string) (models.Quote, error) {
	sym, err := security.NormalizeSymbol(symbol)
	if err != nil {
		return models.Quote{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	q, err := s.source.Quote(ctx, sym)
	if err != nil {
		return models.Quote{}, err
	}
	q.Symbol = sym
	return q, nil
}
