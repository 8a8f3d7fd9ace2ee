// Package market fetches quotes and futures snapshots.
package market

import (
	"context"
	"errors"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/resilience"
	"justtrades-bot/pkg/utils"
)

// Source returns the latest quote for a symbol.
type Source interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
}

// fetchFunc matches quote.Get so tests can substitute it.
type fetchFunc func(symbol string) (*finance.Quote, error)

// YahooSource reads quotes from Yahoo Finance behind a circuit breaker
// with retries.
type YahooSource struct {
	fetch   fetchFunc
	breaker *resilience.CircuitBreaker
	retry   utils.RetryConfig
	logger  zerolog.Logger
}

// NewYahooSource creates a Yahoo Finance source.
func NewYahooSource(logger zerolog.Logger) *YahooSource {
	logger = logging.WithComponent(logger, "market")
	retry := utils.DefaultRetryConfig()
	retry.Retryable = isRetryable
	return &YahooSource{
		fetch:   quote.Get,
		breaker: resilience.NewCircuitBreaker("yahoo", resilience.DefaultCircuitBreakerConfig(), logger),
		retry:   retry,
		logger:  logger,
	}
}

// Quote implements Source.
func (y *YahooSource) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	return utils.RetryWithResult(ctx, y.retry, func() (models.Quote, error) {
		return resilience.ExecuteWithResult(y.breaker, ctx, func(context.Context) (models.Quote, error) {
			return y.get(symbol)
		})
	})
}

func (y *YahooSource) get(symbol string) (models.Quote, error) {
	q, err := y.fetch(symbol)
	if err != nil {
		return models.Quote{}, apperrors.NewDataError("quote", symbol, "fetch failed", err)
	}
	// finance-go returns nil, nil for unknown symbols
	if q == nil || q.RegularMarketPrice <= 0 {
		return models.Quote{}, apperrors.NewDataError("quote", symbol, "no price", apperrors.ErrNoMarketData)
	}

	name := q.ShortName
	if name == "" {
		name = symbol
	}
	out := models.NewQuote(symbol, name, q.RegularMarketPrice, q.RegularMarketPreviousClose)
	out.Currency = q.CurrencyID

	y.logger.Debug().
		Str("symbol", symbol).
		Str("price", out.Price.String()).
		Msg("Quote fetched")
	return out, nil
}

// Breaker exposes the circuit breaker for status reporting.
func (y *YahooSource) Breaker() *resilience.CircuitBreaker {
	return y.breaker
}

func isRetryable(err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrNoMarketData),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
