package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/notify"
	"justtrades-bot/pkg/utils"
)

const defaultStatsDays = 30

func (h *handlers) journalCommands() []*Command {
	return []*Command{
		{
			Name:        "stats",
			Description: "Win/loss summary from the trade journal",
			Category:    CategoryJournal,
			Example:     "!stats 7",
			Params: []Param{
				{Name: "days", Description: "Days to look back (default: 30)", Type: TypeInt, Default: defaultStatsDays},
			},
			Handler: h.stats,
		},
	}
}

func points(v decimal.Decimal) string {
	return utils.FormatSigned(v) + " pts"
}

func (h *handlers) stats(ctx context.Context, req *Request) (Result, error) {
	if h.deps.Journal == nil {
		return Text("The trade journal is disabled."), nil
	}
	days := req.Args.Int("days")
	if days <= 0 {
		return Result{}, apperrors.NewUsageError(req.Command.Name, "", "days must be positive")
	}

	st, err := h.deps.Journal.Stats(ctx, req.Now.Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return Result{}, err
	}
	if st.Closed == 0 && st.Alerts == 0 {
		return Text("No trades journaled in the last %d days.", days), nil
	}

	color := notify.ColorGreen
	if st.NetPnL.IsNegative() {
		color = notify.ColorRed
	}
	msg := notify.Message{
		Kind:      notify.KindInfo,
		Title:     fmt.Sprintf("Trading Stats - Last %d Days", days),
		Color:     color,
		Timestamp: req.Now,
	}
	msg.AddField("Alerts", fmt.Sprint(st.Alerts), true).
		AddField("Closed", fmt.Sprint(st.Closed), true).
		AddField("Win Rate", st.WinRate().StringFixed(1)+"%", true).
		AddField("Wins / Losses", fmt.Sprintf("%d / %d", st.Wins, st.Losses), true).
		AddField("Net P&L", "**"+points(st.NetPnL)+"**", true)
	if st.Closed > 0 {
		msg.AddField("Avg Win", points(st.AvgWin), true).
			AddField("Avg Loss", points(st.AvgLoss), true).
			AddField("Best", points(st.Best), true).
			AddField("Worst", points(st.Worst), true)
	}
	return Embed(msg), nil
}
