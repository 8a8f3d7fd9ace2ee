// Package models provides domain models for the trading bot.
package models

import (
	"strings"
)

// ChannelKey names a destination channel independently of its platform ID.
type ChannelKey string

const (
	ChannelNewsHeadlines    ChannelKey = "news_headlines"
	ChannelDailyBias        ChannelKey = "daily_bias"
	ChannelBreakingNews     ChannelKey = "breaking_news"
	ChannelLiveTrades       ChannelKey = "live_trades"
	ChannelTradeSetups      ChannelKey = "trade_setups"
	ChannelChartSetups      ChannelKey = "chart_setups"
	ChannelTradingGlossary  ChannelKey = "trading_glossary"
	ChannelEconomicCalendar ChannelKey = "economic_calendar"
	ChannelTradeAlerts      ChannelKey = "trade_alerts"
)

// AllChannelKeys returns every known channel key in a stable order.
func AllChannelKeys() []ChannelKey {
	return []ChannelKey{
		ChannelNewsHeadlines,
		ChannelDailyBias,
		ChannelBreakingNews,
		ChannelLiveTrades,
		ChannelTradeSetups,
		ChannelChartSetups,
		ChannelTradingGlossary,
		ChannelEconomicCalendar,
		ChannelTradeAlerts,
	}
}

// ParseChannelKey resolves a channel key from its name (case-insensitive,
// dashes accepted in place of underscores).
func ParseChannelKey(s string) (ChannelKey, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range AllChannelKeys() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Direction represents a market bias or trade direction.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// ParseDirection maps user input to a bias direction. Anything that is not
// bullish or bearish is neutral.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return DirectionBullish
	case "bearish":
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

// Bias is a daily market bias posted by an operator.
type Bias struct {
	Direction Direction
	Notes     string
	Author    string
}
