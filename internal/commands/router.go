package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/notify"
)

// Router resolves invocations to commands and turns handler results into
// replies, posting to channels through the sink.
type Router struct {
	prefix   string
	sink     notify.Sink
	now      func() time.Time
	logger   zerolog.Logger
	commands []*Command
	index    map[string]*Command
}

// NewRouter creates an empty router. now supplies the handler clock, usually
// time.Now in the bot's timezone.
func NewRouter(prefix string, sink notify.Sink, now func() time.Time, logger zerolog.Logger) *Router {
	if prefix == "" {
		prefix = "!"
	}
	if now == nil {
		now = time.Now
	}
	return &Router{
		prefix: prefix,
		sink:   sink,
		now:    now,
		logger: logging.WithComponent(logger, "commands"),
		index:  make(map[string]*Command),
	}
}

// Register adds commands. Names and aliases must be unique.
func (r *Router) Register(cmds ...*Command) error {
	for _, c := range cmds {
		if c.Name == "" || c.Handler == nil {
			return fmt.Errorf("command %q is missing a name or handler", c.Name)
		}
		for i, p := range c.Params {
			if p.Rest && i != len(c.Params)-1 {
				return fmt.Errorf("command %s: rest param %s must be last", c.Name, p.Name)
			}
		}
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if _, dup := r.index[name]; dup {
				return fmt.Errorf("duplicate command name %q", name)
			}
			r.index[name] = c
		}
		r.commands = append(r.commands, c)
	}
	return nil
}

// Prefix returns the prefix-command marker.
func (r *Router) Prefix() string { return r.prefix }

// Lookup finds a command by name or alias.
func (r *Router) Lookup(name string) (*Command, bool) {
	c, ok := r.index[strings.ToLower(name)]
	return c, ok
}

// Commands returns registered commands in registration order.
func (r *Router) Commands() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// ParseMessage splits prefix-style message content into a command name and
// argument tokens. ok is false when content is not a command.
func (r *Router) ParseMessage(content string) (name string, tokens []string, ok bool) {
	if !strings.HasPrefix(content, r.prefix) {
		return "", nil, false
	}
	parts := Tokenize(strings.TrimPrefix(content, r.prefix))
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}

// Dispatch runs one invocation end to end. Unknown commands produce an empty
// reply. Nothing the handler does escapes as an error.
func (r *Router) Dispatch(ctx context.Context, inv Invocation) Reply {
	cmd, ok := r.Lookup(inv.Name)
	if !ok {
		return Reply{}
	}

	start := time.Now()
	reply, err := r.dispatch(ctx, cmd, inv)
	logging.LogCommand(r.logger, cmd.Name, string(inv.Style), inv.Author, time.Since(start), err)
	return reply
}

func (r *Router) dispatch(ctx context.Context, cmd *Command, inv Invocation) (reply Reply, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("command panicked: %v", p)
			reply = Reply{Content: "Something went wrong running that command.", Ephemeral: inv.Style == StyleSlash}
		}
	}()

	var args Args
	if inv.Style == StyleSlash {
		args, err = ParseOptions(cmd, inv.Options)
	} else {
		args, err = ParsePrefix(cmd, inv.Tokens)
	}
	if err != nil {
		return r.usageReply(cmd, inv.Style), err
	}

	result, err := cmd.Handler(ctx, &Request{
		Command: cmd,
		Style:   inv.Style,
		Args:    args,
		Author:  inv.Author,
		Now:     r.now(),
		Router:  r,
		Logger:  logging.WithCommand(r.logger, cmd.Name),
	})
	if err != nil {
		var usage *apperrors.UsageError
		if errors.As(err, &usage) {
			reply := r.usageReply(cmd, inv.Style)
			if usage.Reason != "" {
				reply.Content = usage.Reason + "\n" + reply.Content
			}
			return reply, err
		}
		return Reply{Content: fmt.Sprintf("Error: %v", err)}, err
	}

	if result.Post == nil {
		return result.Reply, nil
	}
	return r.deliver(ctx, result.Post, inv.Style), nil
}

// deliver posts to the target channel; when that fails the message itself
// is returned so the invoker still sees it.
func (r *Router) deliver(ctx context.Context, post *Post, style Style) Reply {
	if err := r.sink.Post(ctx, post.Channel, post.Message); err != nil {
		msg := post.Message
		return Reply{Message: &msg}
	}
	return Reply{Content: post.Ack, Ephemeral: style == StyleSlash}
}

func (r *Router) usageReply(cmd *Command, style Style) Reply {
	return Reply{Content: cmd.UsageText(style, r.prefix), Ephemeral: style == StyleSlash}
}
