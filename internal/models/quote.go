package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol    string
	Name      string
	Price     decimal.Decimal
	PrevClose decimal.Decimal
	Currency  string
	FetchedAt time.Time
}

// NewQuote builds a quote from raw float prices. A zero previous close is
// replaced by the price itself so change figures come out as zero.
func NewQuote(symbol, name string, price, prevClose float64) Quote {
	p := decimal.NewFromFloat(price)
	pc := decimal.NewFromFloat(prevClose)
	if pc.IsZero() {
		pc = p
	}
	return Quote{
		Symbol:    symbol,
		Name:      name,
		Price:     p,
		PrevClose: pc,
		FetchedAt: time.Now(),
	}
}

// Change returns the absolute change from the previous close.
func (q Quote) Change() decimal.Decimal {
	if q.PrevClose.IsZero() {
		return decimal.Zero
	}
	return q.Price.Sub(q.PrevClose)
}

// ChangePercent returns the change from the previous close in percent.
func (q Quote) ChangePercent() decimal.Decimal {
	if q.PrevClose.IsZero() {
		return decimal.Zero
	}
	return q.Change().Div(q.PrevClose).Mul(hundred)
}

// IsUp reports whether the price is at or above the previous close.
func (q Quote) IsUp() bool {
	return !q.Change().IsNegative()
}

// HasPrice reports whether the quote carries a usable price.
func (q Quote) HasPrice() bool {
	return q.Price.IsPositive()
}
