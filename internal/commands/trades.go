package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/security"
	"justtrades-bot/pkg/utils"
)

const blankField = "\u200b"

func (h *handlers) tradeCommands() []*Command {
	return []*Command{
		{
			Name:        "alert",
			Description: "Post a trade alert",
			Category:    CategoryTrades,
			Example:     "!alert NQ BUY 21500 21480 21560 Breaking resistance",
			Params: []Param{
				{Name: "symbol", Description: "Trading symbol", Type: TypeString, Required: true},
				{Name: "action", Description: "BUY or SELL", Type: TypeString, Required: true},
				{Name: "entry", Description: "Entry price", Type: TypeFloat, Required: true},
				{Name: "stop", Description: "Stop loss price", Type: TypeFloat, Required: true},
				{Name: "target", Description: "Target price", Type: TypeFloat, Required: true},
				{Name: "notes", Description: "Trade notes", Type: TypeString, Rest: true},
			},
			Posts:   true,
			Handler: h.alert,
		},
		{
			Name:        "close",
			Description: "Post a trade result",
			Category:    CategoryTrades,
			Example:     "!close NQ WIN 45 Hit target perfectly",
			Params: []Param{
				{Name: "symbol", Description: "Trading symbol", Type: TypeString, Required: true},
				{Name: "result", Description: "WIN or LOSS", Type: TypeString, Required: true},
				{Name: "pnl", Description: "Points gained or lost", Type: TypeFloat, Required: true},
				{Name: "notes", Description: "Trade notes", Type: TypeString, Rest: true},
			},
			Posts:   true,
			Handler: h.close,
		},
		{
			Name:        "update",
			Description: "Post a trade update",
			Category:    CategoryTrades,
			Example:     "!update NQ Stop moved to breakeven",
			Params: []Param{
				{Name: "symbol", Description: "Trading symbol", Type: TypeString, Required: true},
				{Name: "text", Description: "Update text", Type: TypeString, Required: true, Rest: true},
			},
			Posts:   true,
			Handler: h.update,
		},
	}
}

func symbolArg(req *Request) (string, error) {
	sym, err := security.NormalizeSymbol(req.Args.String("symbol"))
	if err != nil {
		return "", apperrors.NewUsageError(req.Command.Name, "", err.Error())
	}
	return sym, nil
}

func bold(v decimal.Decimal) string {
	return "**" + utils.FormatPrice(v) + "**"
}

func (h *handlers) alert(ctx context.Context, req *Request) (Result, error) {
	symbol, err := symbolArg(req)
	if err != nil {
		return Result{}, err
	}
	a := models.TradeAlert{
		Symbol:    symbol,
		Side:      models.ParseSide(req.Args.String("action")),
		Entry:     req.Args.Decimal("entry"),
		Stop:      req.Args.Decimal("stop"),
		Target:    req.Args.Decimal("target"),
		Notes:     security.SanitizeText(req.Args.String("notes")),
		Author:    security.SanitizeText(req.Author),
		CreatedAt: req.Now,
	}
	_, _, ratio := a.RiskReward()

	color := notify.ColorGreen
	if a.Side == models.SideShort {
		color = notify.ColorRed
	}
	msg := notify.Message{
		Kind:      notify.KindAlert,
		Title:     "TRADE ALERT: " + symbol,
		Color:     color,
		Timestamp: req.Now,
		Footer:    fmt.Sprintf("Alert by %s | %s", a.Author, h.clock(req.Now)),
	}
	msg.AddField("Action", "**"+string(a.Side)+"**", true).
		AddField("Entry", bold(a.Entry), true).
		AddField(blankField, blankField, true).
		AddField("Stop Loss", bold(a.Stop), true).
		AddField("Target", bold(a.Target), true).
		AddField("R:R", "**"+utils.FormatRatio(ratio)+"**", true)
	if a.Notes != "" {
		msg.AddField("Notes", a.Notes, false)
	}

	if h.deps.Journal != nil {
		if _, err := h.deps.Journal.LogAlert(ctx, a); err != nil {
			req.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to journal alert")
		}
	}
	return PostTo(models.ChannelTradeAlerts, msg, "Trade alert posted to #trade-alerts!"), nil
}

func (h *handlers) close(ctx context.Context, req *Request) (Result, error) {
	symbol, err := symbolArg(req)
	if err != nil {
		return Result{}, err
	}
	c := models.TradeClose{
		Symbol:    symbol,
		Result:    models.ParseResult(req.Args.String("result")),
		PnL:       req.Args.Decimal("pnl"),
		Notes:     security.SanitizeText(req.Args.String("notes")),
		Author:    security.SanitizeText(req.Author),
		CreatedAt: req.Now,
	}

	color := notify.ColorGreen
	if c.Result != models.ResultWin {
		color = notify.ColorRed
	}
	msg := notify.Message{
		Kind:        notify.KindAlert,
		Title:       fmt.Sprintf("%s - %s", symbol, c.Result.Label()),
		Description: fmt.Sprintf("**%s points**", utils.FormatSigned(c.PnL)),
		Color:       color,
		Timestamp:   req.Now,
		Footer:      "Closed by " + c.Author,
	}
	if c.Notes != "" {
		msg.AddField("Notes", c.Notes, false)
	}

	if h.deps.Journal != nil {
		if _, err := h.deps.Journal.LogClose(ctx, c); err != nil {
			req.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to journal close")
		}
	}
	return PostTo(models.ChannelTradeAlerts, msg, "Trade close posted to #trade-alerts!"), nil
}

func (h *handlers) update(_ context.Context, req *Request) (Result, error) {
	symbol, err := symbolArg(req)
	if err != nil {
		return Result{}, err
	}
	msg := notify.Message{
		Kind:        notify.KindAlert,
		Title:       symbol + " Update",
		Description: "**" + security.SanitizeText(req.Args.String("text")) + "**",
		Color:       notify.ColorBlue,
		Timestamp:   req.Now,
		Footer:      "Update by " + security.SanitizeText(req.Author),
	}
	return PostTo(models.ChannelTradeAlerts, msg, "Update posted to #trade-alerts!"), nil
}
