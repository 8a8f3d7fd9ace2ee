// Package store persists the trade journal.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"justtrades-bot/internal/models"
)

// Journal records relayed trade alerts and their results.
type Journal interface {
	LogAlert(ctx context.Context, alert models.TradeAlert) (string, error)
	LogClose(ctx context.Context, close models.TradeClose) (string, error)
	Stats(ctx context.Context, since time.Time) (JournalStats, error)
	RecentCloses(ctx context.Context, limit int) ([]models.TradeClose, error)
	Close() error
}

// JournalStats summarizes closed trades over a period.
type JournalStats struct {
	Since   time.Time       `json:"since"`
	Alerts  int             `json:"alerts"`
	Closed  int             `json:"closed"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	NetPnL  decimal.Decimal `json:"net_pnl"`
	AvgWin  decimal.Decimal `json:"avg_win"`
	AvgLoss decimal.Decimal `json:"avg_loss"`
	Best    decimal.Decimal `json:"best"`
	Worst   decimal.Decimal `json:"worst"`
}

// WinRate returns wins as a percentage of closed trades.
func (s JournalStats) WinRate() decimal.Decimal {
	if s.Closed == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Wins)).
		Div(decimal.NewFromInt(int64(s.Closed))).
		Mul(decimal.NewFromInt(100))
}

// summarize folds closes into stats.
func summarize(since time.Time, alerts int, closes []models.TradeClose) JournalStats {
	st := JournalStats{Since: since, Alerts: alerts, Closed: len(closes)}
	var winSum, lossSum decimal.Decimal
	for i, c := range closes {
		st.NetPnL = st.NetPnL.Add(c.PnL)
		if i == 0 || c.PnL.GreaterThan(st.Best) {
			st.Best = c.PnL
		}
		if i == 0 || c.PnL.LessThan(st.Worst) {
			st.Worst = c.PnL
		}
		if c.Result == models.ResultWin {
			st.Wins++
			winSum = winSum.Add(c.PnL)
		} else {
			st.Losses++
			lossSum = lossSum.Add(c.PnL)
		}
	}
	if st.Wins > 0 {
		st.AvgWin = winSum.Div(decimal.NewFromInt(int64(st.Wins)))
	}
	if st.Losses > 0 {
		st.AvgLoss = lossSum.Div(decimal.NewFromInt(int64(st.Losses)))
	}
	return st
}
