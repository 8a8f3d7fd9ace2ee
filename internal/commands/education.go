package commands

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"justtrades-bot/internal/education"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
	"justtrades-bot/internal/security"
)

func (h *handlers) educationCommands() []*Command {
	return []*Command{
		{
			Name:        "define",
			Description: "Trading term definition",
			Category:    CategoryEducation,
			Example:     "!define support",
			Params: []Param{
				{Name: "term", Description: "Glossary term", Type: TypeString},
			},
			Handler: h.define,
		},
		{
			Name:        "terms",
			Description: "List all terms",
			Category:    CategoryEducation,
			Handler:     h.terms,
		},
		{
			Name:        "tip",
			Description: "Random trading tip",
			Category:    CategoryEducation,
			Handler:     h.tip,
		},
		{
			Name:        "postterm",
			Description: "Post a term to the glossary channel",
			Category:    CategoryEducation,
			Example:     "!postterm support",
			Params: []Param{
				{Name: "term", Description: "Glossary term", Type: TypeString, Required: true},
			},
			Posts:   true,
			Handler: h.postTerm,
		},
	}
}

func availableTerms() string {
	return "**Available terms:** " + strings.Join(education.Keys(), ", ")
}

func termNotFound(term string) Result {
	return Text("Term '%s' not found.\n\n%s", security.SanitizeText(term), availableTerms())
}

func termMessage(t education.Term) notify.Message {
	msg := notify.Message{Kind: notify.KindInfo, Title: t.Title, Color: notify.ColorBlue}
	msg.AddField("Definition", t.Definition, false)
	msg.AddField("Example", t.Example, false)
	return msg
}

func (h *handlers) define(_ context.Context, req *Request) (Result, error) {
	term := req.Args.String("term")
	if term == "" {
		return Text("%s\n\n%s", req.Command.UsageText(req.Style, req.Router.Prefix()), availableTerms()), nil
	}
	t, err := education.Lookup(term)
	if err != nil {
		return termNotFound(term), nil
	}
	return Embed(termMessage(t)), nil
}

func (h *handlers) terms(_ context.Context, req *Request) (Result, error) {
	lines := make([]string, 0, len(education.Keys()))
	for _, k := range education.Keys() {
		lines = append(lines, fmt.Sprintf("- **%s**", k))
	}
	define := "!define"
	if req.Style == StyleSlash {
		define = "/define"
	} else if req.Router != nil {
		define = req.Router.Prefix() + "define"
	}
	return Embed(notify.Message{
		Kind:        notify.KindInfo,
		Title:       "Trading Terms",
		Description: fmt.Sprintf("Use `%s <term>` to learn more:\n\n%s", define, strings.Join(lines, "\n")),
		Color:       notify.ColorGold,
	}), nil
}

func (h *handlers) tip(_ context.Context, _ *Request) (Result, error) {
	tip := h.rng.with(func(r *rand.Rand) string { return education.RandomTip(r) })
	return Embed(notify.Message{
		Kind:        notify.KindInfo,
		Title:       "Trading Tip",
		Description: tip,
		Color:       notify.ColorGreen,
	}), nil
}

func (h *handlers) postTerm(_ context.Context, req *Request) (Result, error) {
	term := req.Args.String("term")
	t, err := education.Lookup(term)
	if err != nil {
		return termNotFound(term), nil
	}
	msg := termMessage(t)
	msg.Footer = "Posted by " + security.SanitizeText(req.Author)
	return PostTo(models.ChannelTradingGlossary, msg, fmt.Sprintf("Posted '%s' to glossary channel!", t.Key)), nil
}
