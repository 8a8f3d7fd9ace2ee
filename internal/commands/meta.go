package commands

import (
	"context"
	"fmt"
	"strings"

	"justtrades-bot/internal/notify"
)

func (h *handlers) metaCommands() []*Command {
	return []*Command{
		{
			Name:        "bothelp",
			Aliases:     []string{"help"},
			Description: "Show all available commands",
			Category:    CategoryMeta,
			Handler:     h.help,
		},
		{
			Name:        "status",
			Description: "Show bot status",
			Category:    CategoryMeta,
			Handler:     h.status,
		},
	}
}

func (h *handlers) help(_ context.Context, req *Request) (Result, error) {
	msg := notify.Message{
		Kind:        notify.KindInfo,
		Title:       "JustTrades Bot Commands",
		Description: "All-in-one trading Discord bot",
		Color:       notify.ColorGold,
		Footer:      "JustTrades Bot | Running on Railway",
	}

	var (
		order  []Category
		groups = map[Category][]string{}
	)
	for _, c := range req.Router.Commands() {
		if _, seen := groups[c.Category]; !seen {
			order = append(order, c.Category)
		}
		groups[c.Category] = append(groups[c.Category],
			fmt.Sprintf("`%s` - %s", c.UsageLine(req.Style, req.Router.Prefix()), c.Description))
	}
	for _, cat := range order {
		msg.AddField(string(cat), strings.Join(groups[cat], "\n"), false)
	}
	return Embed(msg), nil
}

func (h *handlers) status(_ context.Context, req *Request) (Result, error) {
	msg := notify.Message{
		Kind:   notify.KindInfo,
		Title:  "Bot Status",
		Color:  notify.ColorGreen,
		Footer: "JustTrades Bot | Railway Deployment",
	}
	msg.AddField("Status", "Online", true)
	if g := h.deps.Gateway; g != nil {
		msg.AddField("Latency", fmt.Sprintf("%dms", g.Latency().Milliseconds()), true).
			AddField("Guilds", fmt.Sprint(g.Guilds()), true)
	}
	msg.AddField(fmt.Sprintf("Time (%s)", h.deps.TZLabel), req.Now.Format("03:04 PM"), true)

	if h.deps.Schedulers != nil {
		for _, st := range h.deps.Schedulers() {
			value := "stopped"
			if st.Running {
				value = st.NextFire.In(req.Now.Location()).Format("Mon Jan 02 03:04 PM") + " " + h.deps.TZLabel
			}
			if st.LastOutcome != "" {
				value += fmt.Sprintf("\nLast: %s", st.LastOutcome)
			}
			msg.AddField("Next "+st.Job, value, false)
		}
	}
	return Embed(msg), nil
}
