package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the side of a trade alert.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide maps BUY/LONG to LONG; everything else is SHORT.
func ParseSide(s string) Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return SideLong
	default:
		return SideShort
	}
}

// TradeResult is the outcome of a closed trade.
type TradeResult string

const (
	ResultWin  TradeResult = "WIN"
	ResultLoss TradeResult = "LOSS"
)

// ParseResult maps WIN to a win; everything else is a loss.
func ParseResult(s string) TradeResult {
	if strings.EqualFold(strings.TrimSpace(s), "WIN") {
		return ResultWin
	}
	return ResultLoss
}

// Label returns the headline word for a result.
func (r TradeResult) Label() string {
	if r == ResultWin {
		return "WINNER"
	}
	return "LOSS"
}

// TradeAlert is a trade idea relayed to the alerts channel.
type TradeAlert struct {
	ID        string
	Symbol    string
	Side      Side
	Entry     decimal.Decimal
	Stop      decimal.Decimal
	Target    decimal.Decimal
	Notes     string
	Author    string
	CreatedAt time.Time
}

// RiskReward returns risk, reward and the reward-to-risk ratio of the alert.
func (a TradeAlert) RiskReward() (risk, reward, ratio decimal.Decimal) {
	return RiskReward(a.Entry, a.Stop, a.Target)
}

// TradeClose records the result of a relayed trade.
type TradeClose struct {
	ID        string
	Symbol    string
	Result    TradeResult
	PnL       decimal.Decimal
	Notes     string
	Author    string
	CreatedAt time.Time
}

// ChartSetup is a chart setup posted to the chart-setups channel.
type ChartSetup struct {
	Symbol string
	Side   Side
	Entry  decimal.Decimal
	Stop   decimal.Decimal
	Target decimal.Decimal
	Notes  string
	Author string
}

// KeyLevels holds support and resistance levels for a symbol. Second levels
// are optional and zero when absent.
type KeyLevels struct {
	Symbol      string
	Support1    decimal.Decimal
	Resistance1 decimal.Decimal
	Support2    decimal.Decimal
	Resistance2 decimal.Decimal
	Notes       string
	Author      string
}

// RiskReward computes risk = |entry-stop|, reward = |target-entry| and
// ratio = reward/risk. The ratio is zero when risk is zero.
func RiskReward(entry, stop, target decimal.Decimal) (risk, reward, ratio decimal.Decimal) {
	risk = entry.Sub(stop).Abs()
	reward = target.Sub(entry).Abs()
	if risk.IsZero() {
		return risk, reward, decimal.Zero
	}
	return risk, reward, reward.Div(risk)
}
