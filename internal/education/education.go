// Package education holds the trading glossary and tips.
package education

import (
	"fmt"
	"math/rand"
	"strings"

	apperrors "justtrades-bot/internal/errors"
)

// Term is a glossary entry.
type Term struct {
	Key        string
	Title      string
	Definition string
	Example    string
}

var terms = []Term{
	{"support", "Support Level",
		"A price level where buying pressure is strong enough to prevent the price from declining further.",
		"If NQ bounces off 21,000 multiple times, 21,000 is a support level."},
	{"resistance", "Resistance Level",
		"A price level where selling pressure is strong enough to prevent the price from rising further.",
		"If ES keeps failing to break above 6,100, that's a resistance level."},
	{"breakout", "Breakout",
		"When price moves above resistance or below support with increased volume.",
		"NQ breaking above 21,500 resistance with high volume signals a bullish breakout."},
	{"pullback", "Pullback",
		"A temporary reversal in the direction of a trend, often providing entry opportunities.",
		"After rallying 200 points, NQ pulls back 50 points before continuing higher."},
	{"scalping", "Scalping",
		"A trading strategy that profits from small price changes, typically holding positions for seconds to minutes.",
		"Buying NQ and selling 5-10 points higher within a few minutes."},
	{"swing", "Swing Trading",
		"A trading style that holds positions for days to weeks to capture larger price moves.",
		"Buying ES on Monday and holding until the expected move completes on Thursday."},
	{"stoploss", "Stop Loss",
		"An order to sell a security when it reaches a certain price to limit potential losses.",
		"Setting a stop loss 20 points below entry to limit risk."},
	{"takeprofit", "Take Profit",
		"An order to close a position when it reaches a predetermined profit target.",
		"Setting take profit 40 points above entry to lock in gains."},
	{"riskreward", "Risk/Reward Ratio",
		"The ratio between potential loss and potential gain on a trade.",
		"Risking 20 points to make 60 points = 1:3 risk/reward ratio."},
	{"liquidity", "Liquidity",
		"How easily an asset can be bought or sold without affecting its price.",
		"ES futures are highly liquid - you can enter/exit large positions easily."},
	{"volatility", "Volatility",
		"The degree of price variation over time. Higher volatility = larger price swings.",
		"During FOMC, volatility spikes as prices move rapidly."},
	{"dca", "Dollar Cost Averaging (DCA)",
		"Investing a fixed amount at regular intervals regardless of price.",
		"Buying $500 of SPY every week, regardless of the current price."},
	{"fomo", "FOMO (Fear Of Missing Out)",
		"The anxiety that an exciting opportunity may be missed, leading to impulsive trades.",
		"Chasing a stock after it's already up 20% because you don't want to miss more gains."},
	{"fud", "FUD (Fear, Uncertainty, Doubt)",
		"Negative sentiment spread to cause panic selling.",
		"Rumors about a company going bankrupt causing the stock to drop."},
}

var tips = []string{
	"**Tip:** Never risk more than 1-2% of your account on a single trade.",
	"**Tip:** Always have a trading plan before entering a position.",
	"**Tip:** The trend is your friend - trade with it, not against it.",
	"**Tip:** Cut losses quickly, let winners run.",
	"**Tip:** Don't revenge trade after a loss.",
	"**Tip:** Journal every trade to learn from your mistakes.",
	"**Tip:** Avoid trading during major news events unless you understand the risks.",
	"**Tip:** Position sizing is more important than win rate.",
	"**Tip:** Paper trade new strategies before using real money.",
	"**Tip:** Take breaks - overtrading leads to poor decisions.",
	"**Tip:** Focus on the process, not the outcome of individual trades.",
	"**Tip:** Higher timeframes show the bigger picture - always check them.",
	"**Tip:** Wait for confirmation before entering a trade.",
	"**Tip:** Never add to a losing position.",
	"**Tip:** Your edge comes from discipline, not predictions.",
}

// Lookup finds a term by key, ignoring case and surrounding space. A miss
// wraps ErrTermNotFound.
func Lookup(key string) (Term, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, t := range terms {
		if t.Key == key {
			return t, nil
		}
	}
	return Term{}, fmt.Errorf("%w: %q", apperrors.ErrTermNotFound, key)
}

// Keys returns the term keys in glossary order.
func Keys() []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Key
	}
	return out
}

// Terms returns a copy of the glossary.
func Terms() []Term {
	out := make([]Term, len(terms))
	copy(out, terms)
	return out
}

// Tips returns a copy of the tips.
func Tips() []string {
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

// RandomTip picks a tip using rng.
func RandomTip(rng *rand.Rand) string {
	return tips[rng.Intn(len(tips))]
}
