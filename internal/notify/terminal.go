package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"justtrades-bot/internal/models"
)

// TerminalSink prints messages to a writer instead of a chat channel. It is
// used for previews from the command line.
type TerminalSink struct {
	mu           sync.Mutex
	out          io.Writer
	colorEnabled bool
}

// NewTerminalSink creates a sink writing to out.
func NewTerminalSink(out io.Writer, colorEnabled bool) *TerminalSink {
	return &TerminalSink{out: out, colorEnabled: colorEnabled}
}

// Post implements Sink.
func (t *TerminalSink) Post(_ context.Context, channel models.ChannelKey, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, FormatMessage(channel, msg, t.colorEnabled))
	return err
}

// FormatMessage formats a message for terminal display.
func FormatMessage(channel models.ChannelKey, msg Message, colorEnabled bool) string {
	var sb strings.Builder

	var color, bold, resetColor string
	if colorEnabled {
		resetColor = "\033[0m"
		bold = "\033[1m"
		switch msg.Color {
		case ColorGreen:
			color = "\033[32m"
		case ColorRed:
			color = "\033[31m"
		case ColorGold:
			color = "\033[33m"
		default:
			color = "\033[36m"
		}
	}

	sb.WriteString(fmt.Sprintf("%s#%s%s | %s%s%s", color, channel, resetColor, bold, msg.Title, resetColor))
	if !msg.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf(" | %s", msg.Timestamp.Format("15:04 MST")))
	}

	if msg.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(indent(stripMarkdown(msg.Description)))
	}

	for _, f := range msg.Fields {
		sb.WriteString(fmt.Sprintf("\n  %s%s%s", bold, stripMarkdown(f.Name), resetColor))
		sb.WriteString("\n")
		sb.WriteString(indent(stripMarkdown(f.Value)))
	}

	if msg.Footer != "" {
		sb.WriteString(fmt.Sprintf("\n    → %s", msg.Footer))
	}

	return sb.String()
}

func stripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	return strings.ReplaceAll(s, "`", "")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
