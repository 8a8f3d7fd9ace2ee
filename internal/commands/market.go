package commands

import (
	"context"
	"errors"
	"fmt"

	"justtrades-bot/internal/digest"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/security"
	"justtrades-bot/pkg/utils"
)

func (h *handlers) marketCommands() []*Command {
	return []*Command{
		{
			Name:        "market",
			Description: "Live futures prices",
			Category:    CategoryMarket,
			Slow:        true,
			Handler:     h.market,
		},
		{
			Name:        "price",
			Description: "Price for any symbol",
			Category:    CategoryMarket,
			Example:     "!price NQ=F",
			Params: []Param{
				{Name: "symbol", Description: "Ticker symbol, e.g. AAPL or NQ=F", Type: TypeString, Required: true},
			},
			Slow:    true,
			Handler: h.price,
		},
		{
			Name:        "bias",
			Description: "Post the daily market bias",
			Category:    CategoryMarket,
			Example:     "!bias bullish Looking for continuation above 21500",
			Params: []Param{
				{Name: "direction", Description: "bullish, bearish or neutral", Type: TypeString, Required: true},
				{Name: "notes", Description: "Notes for the bias", Type: TypeString, Rest: true},
			},
			Posts:   true,
			Handler: h.bias,
		},
	}
}

func (h *handlers) market(ctx context.Context, req *Request) (Result, error) {
	if h.deps.Market == nil {
		return Text(digest.MarketUnavailable), nil
	}
	snap, err := h.deps.Market.Snapshot(ctx)
	if err != nil {
		return Text(digest.MarketUnavailable), nil
	}

	msg := notify.Message{
		Kind:        notify.KindInfo,
		Title:       "Live Market Data",
		Description: "Updated: " + h.clock(req.Now),
		Color:       notify.ColorBlue,
	}
	for _, q := range snap.Quotes {
		msg.Fields = append(msg.Fields, digest.QuoteField(q))
	}
	if len(snap.Missing) > 0 {
		msg.Footer = fmt.Sprintf("%d symbol(s) unavailable", len(snap.Missing))
	}
	return Embed(msg), nil
}

func (h *handlers) price(ctx context.Context, req *Request) (Result, error) {
	raw := req.Args.String("symbol")
	symbol, err := security.NormalizeSymbol(raw)
	if err != nil {
		return Result{}, apperrors.NewUsageError(req.Command.Name, "", err.Error())
	}
	if h.deps.Market == nil {
		return Text(digest.MarketUnavailable), nil
	}

	q, err := h.deps.Market.Price(ctx, symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoMarketData) {
			return Text("No market data for %s.", symbol), nil
		}
		return Text("Error fetching %s: %v", symbol, err), nil
	}

	change := q.Change()
	color := notify.ColorGreen
	if !q.IsUp() {
		color = notify.ColorRed
	}
	msg := notify.Message{Kind: notify.KindInfo, Title: symbol, Color: color}
	msg.AddField("Price", fmt.Sprintf("**$%s**", utils.FormatPrice(q.Price)), true)
	msg.AddField("Change", fmt.Sprintf("%s (%s)", utils.FormatSigned(change), utils.FormatPercent(q.ChangePercent())), true)
	return Embed(msg), nil
}

func (h *handlers) bias(_ context.Context, req *Request) (Result, error) {
	dir := models.ParseDirection(req.Args.String("direction"))
	notes := security.SanitizeText(req.Args.String("notes"))
	if notes == "" {
		notes = "No additional notes"
	}

	color := notify.ColorGold
	switch dir {
	case models.DirectionBullish:
		color = notify.ColorGreen
	case models.DirectionBearish:
		color = notify.ColorRed
	}

	msg := notify.Message{
		Kind:        notify.KindAlert,
		Title:       "Daily Bias: " + string(dir),
		Description: notes,
		Color:       color,
		Timestamp:   req.Now,
		Footer:      "Posted by " + security.SanitizeText(req.Author),
	}
	return PostTo(models.ChannelDailyBias, msg, "Daily bias posted to #daily-bias channel!"), nil
}
