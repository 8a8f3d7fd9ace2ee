package store

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"justtrades-bot/internal/models"
)

// Property: wins plus losses always equals the number of closed trades, and
// net P&L equals the sum of the individual results.
func TestProperty_StatsConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	pnlGen := gen.SliceOf(gen.Int64Range(-5000, 5000))

	properties.Property("summary counts and totals are consistent", prop.ForAll(
		func(pnls []int64) bool {
			closes := make([]models.TradeClose, len(pnls))
			want := decimal.Zero
			for i, p := range pnls {
				result := models.ResultLoss
				if p > 0 {
					result = models.ResultWin
				}
				closes[i] = models.TradeClose{Result: result, PnL: decimal.NewFromInt(p)}
				want = want.Add(decimal.NewFromInt(p))
			}

			st := summarize(time.Time{}, 0, closes)
			if st.Wins+st.Losses != st.Closed || st.Closed != len(pnls) {
				return false
			}
			if !st.NetPnL.Equal(want) {
				return false
			}
			rate := st.WinRate()
			return rate.GreaterThanOrEqual(decimal.Zero) && rate.LessThanOrEqual(decimal.NewFromInt(100))
		},
		pnlGen,
	))

	properties.TestingRun(t)
}

// Property: closes stored in the journal are reflected exactly in Stats.
func TestProperty_JournalRoundTrip(t *testing.T) {
	j := newTestJournal(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offset := 0

	properties.Property("stored closes sum to net P&L", prop.ForAll(
		func(cents []int64) bool {
			// each run writes into its own day so runs never overlap
			offset++
			day := base.AddDate(0, 0, offset*2)

			want := decimal.Zero
			for i, c := range cents {
				pnl := decimal.New(c, -2)
				want = want.Add(pnl)
				result := models.ResultLoss
				if c > 0 {
					result = models.ResultWin
				}
				_, err := j.LogClose(ctx, models.TradeClose{
					Symbol:    "ES",
					Result:    result,
					PnL:       pnl,
					CreatedAt: day.Add(time.Duration(i) * time.Second),
				})
				if err != nil {
					t.Logf("LogClose failed: %v", err)
					return false
				}
			}

			st, err := j.Stats(ctx, day)
			if err != nil {
				t.Logf("Stats failed: %v", err)
				return false
			}
			return st.Closed == len(cents) && st.NetPnL.Equal(want)
		},
		gen.SliceOfN(5, gen.Int64Range(-100000, 100000)),
	))

	properties.TestingRun(t)
}
