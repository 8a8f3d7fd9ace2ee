// Package commands implements every bot command once, independent of how it
// was invoked. Chat adapters turn prefix messages or slash interactions into
// an Invocation and send back the Reply.
package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
)

// Style is how a command was invoked.
type Style string

const (
	StylePrefix Style = "prefix"
	StyleSlash  Style = "slash"
)

// ParamType is the declared type of a command parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeFloat  ParamType = "float"
	TypeInt    ParamType = "int"
)

// Param declares one command argument. A Rest param swallows the remaining
// prefix tokens and must be last.
type Param struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
	Rest        bool
	Default     interface{}
}

// Category groups commands in help output.
type Category string

const (
	CategoryMarket    Category = "Market Data"
	CategoryEducation Category = "Education"
	CategoryTrades    Category = "Trade Relay"
	CategoryAnalysis  Category = "Analysis"
	CategoryCalendar  Category = "Calendar"
	CategoryJournal   Category = "Journal"
	CategoryMeta      Category = "Bot"
)

// Handler executes a command with parsed arguments.
type Handler func(ctx context.Context, req *Request) (Result, error)

// Command is a single bot command.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Category    Category
	Example     string
	Params      []Param
	Handler     Handler
	// Slow commands call external services; adapters acknowledge them
	// before running the handler.
	Slow bool
	// Posts marks commands that publish to a channel and answer slash
	// invocations with an ephemeral acknowledgement.
	Posts bool
}

// UsageLine renders the command signature for the given style, e.g.
// "!alert <symbol> <action> <entry> <stop> <target> [notes...]".
func (c *Command) UsageLine(style Style, prefix string) string {
	var b strings.Builder
	if style == StyleSlash {
		b.WriteString("/")
	} else {
		b.WriteString(prefix)
	}
	b.WriteString(c.Name)
	for _, p := range c.Params {
		name := p.Name
		if p.Rest {
			name += "..."
		}
		if p.Required {
			fmt.Fprintf(&b, " <%s>", name)
		} else {
			fmt.Fprintf(&b, " [%s]", name)
		}
	}
	return b.String()
}

// UsageText is the full help shown after a usage error.
func (c *Command) UsageText(style Style, prefix string) string {
	text := fmt.Sprintf("Usage: `%s`", c.UsageLine(style, prefix))
	if c.Example != "" {
		example := c.Example
		if style == StyleSlash {
			example = "/" + strings.TrimPrefix(example, prefix)
		}
		text += fmt.Sprintf("\nExample: `%s`", example)
	}
	return text
}

// Invocation is a command call as received from a chat adapter.
type Invocation struct {
	Style   Style
	Name    string
	Tokens  []string               // prefix style
	Options map[string]interface{} // slash style
	Author  string
}

// Request is what a handler sees.
type Request struct {
	Command *Command
	Style   Style
	Args    Args
	Author  string
	Now     time.Time
	Router  *Router
	Logger  zerolog.Logger
}

// Post is a message destined for a named channel.
type Post struct {
	Channel models.ChannelKey
	Message notify.Message
	// Ack is sent back to the invoker once the post succeeds.
	Ack string
}

// Result is a handler's output: an inline reply, a channel post, or both
// (the post takes precedence).
type Result struct {
	Reply Reply
	Post  *Post
}

// Reply is what the adapter sends back to the invoker.
type Reply struct {
	Content   string
	Message   *notify.Message
	Ephemeral bool
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Content == "" && r.Message == nil
}

// Text replies with plain content.
func Text(format string, args ...interface{}) Result {
	return Result{Reply: Reply{Content: fmt.Sprintf(format, args...)}}
}

// Embed replies inline with a message.
func Embed(msg notify.Message) Result {
	return Result{Reply: Reply{Message: &msg}}
}

// PostTo posts msg to channel and acknowledges with ack.
func PostTo(channel models.ChannelKey, msg notify.Message, ack string) Result {
	return Result{Post: &Post{Channel: channel, Message: msg, Ack: ack}}
}
