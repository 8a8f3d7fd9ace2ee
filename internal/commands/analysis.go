package commands

import (
	"context"
	"strings"

	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/security"
	"justtrades-bot/pkg/utils"
)

func (h *handlers) analysisCommands() []*Command {
	return []*Command{
		{
			Name:        "setup",
			Description: "Post a chart setup",
			Category:    CategoryAnalysis,
			Example:     "!setup NQ long 21500 21450 21600 Bull flag on the 15m",
			Params: []Param{
				{Name: "symbol", Description: "Trading symbol (e.g., NQ, ES, AAPL)", Type: TypeString, Required: true},
				{Name: "direction", Description: "Long or Short", Type: TypeString, Required: true},
				{Name: "entry", Description: "Entry price", Type: TypeFloat, Required: true},
				{Name: "stop", Description: "Stop loss price", Type: TypeFloat, Required: true},
				{Name: "target", Description: "Target price", Type: TypeFloat, Required: true},
				{Name: "notes", Description: "Additional notes about the setup", Type: TypeString, Rest: true},
			},
			Posts:   true,
			Handler: h.setup,
		},
		{
			Name:        "levels",
			Description: "Post key support/resistance levels",
			Category:    CategoryAnalysis,
			Example:     "!levels ES 6050 6120 6010 6150 Watching the overnight high",
			Params: []Param{
				{Name: "symbol", Description: "Trading symbol", Type: TypeString, Required: true},
				{Name: "support1", Description: "First support level", Type: TypeFloat, Required: true},
				{Name: "resistance1", Description: "First resistance level", Type: TypeFloat, Required: true},
				{Name: "support2", Description: "Second support level (optional)", Type: TypeFloat},
				{Name: "resistance2", Description: "Second resistance level (optional)", Type: TypeFloat},
				{Name: "notes", Description: "Additional notes", Type: TypeString, Rest: true},
			},
			Posts:   true,
			Handler: h.levels,
		},
	}
}

func (h *handlers) setup(_ context.Context, req *Request) (Result, error) {
	symbol, err := symbolArg(req)
	if err != nil {
		return Result{}, err
	}
	s := models.ChartSetup{
		Symbol: symbol,
		Side:   models.SideShort,
		Entry:  req.Args.Decimal("entry"),
		Stop:   req.Args.Decimal("stop"),
		Target: req.Args.Decimal("target"),
		Notes:  security.SanitizeText(req.Args.String("notes")),
		Author: security.SanitizeText(req.Author),
	}
	if strings.EqualFold(strings.TrimSpace(req.Args.String("direction")), "long") {
		s.Side = models.SideLong
	}
	risk, reward, ratio := models.RiskReward(s.Entry, s.Stop, s.Target)

	color := notify.ColorGreen
	if s.Side == models.SideShort {
		color = notify.ColorRed
	}
	msg := notify.Message{
		Kind:      notify.KindAlert,
		Title:     symbol + " - " + string(s.Side),
		Color:     color,
		Timestamp: req.Now,
		Footer:    "Posted by " + s.Author,
	}
	msg.AddField("Entry", bold(s.Entry), true).
		AddField("Stop Loss", bold(s.Stop), true).
		AddField("Target", bold(s.Target), true).
		AddField("Risk", utils.FormatPrice(risk)+" pts", true).
		AddField("Reward", utils.FormatPrice(reward)+" pts", true).
		AddField("R:R", utils.FormatRatio(ratio), true)
	if s.Notes != "" {
		msg.AddField("Notes", s.Notes, false)
	}
	return PostTo(models.ChannelChartSetups, msg, "Chart setup posted!"), nil
}

func (h *handlers) levels(_ context.Context, req *Request) (Result, error) {
	symbol, err := symbolArg(req)
	if err != nil {
		return Result{}, err
	}
	l := models.KeyLevels{
		Symbol:      symbol,
		Support1:    req.Args.Decimal("support1"),
		Resistance1: req.Args.Decimal("resistance1"),
		Support2:    req.Args.Decimal("support2"),
		Resistance2: req.Args.Decimal("resistance2"),
		Notes:       security.SanitizeText(req.Args.String("notes")),
	}

	support := "S1: " + bold(l.Support1)
	if !l.Support2.IsZero() {
		support += "\nS2: " + bold(l.Support2)
	}
	resistance := "R1: " + bold(l.Resistance1)
	if !l.Resistance2.IsZero() {
		resistance += "\nR2: " + bold(l.Resistance2)
	}

	msg := notify.Message{
		Kind:      notify.KindAlert,
		Title:     symbol + " Key Levels",
		Color:     notify.ColorBlue,
		Timestamp: req.Now,
		Footer:    "Posted by " + security.SanitizeText(req.Author),
	}
	msg.AddField("Support", support, true).AddField("Resistance", resistance, true)
	if l.Notes != "" {
		msg.AddField("Notes", l.Notes, false)
	}
	return PostTo(models.ChannelChartSetups, msg, "Levels posted!"), nil
}
