// Package discord connects the command core and channel sink to Discord.
package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"justtrades-bot/internal/commands"
	"justtrades-bot/internal/config"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
)

const commandTimeout = 30 * time.Second

// Client owns the gateway session and routes messages and interactions to
// the command router.
type Client struct {
	session *discordgo.Session
	router  *commands.Router
	cfg     config.DiscordConfig
	logger  zerolog.Logger

	readyOnce sync.Once
	onReady   func()

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a client. The session is not opened until Open.
func New(cfg config.DiscordConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, apperrors.ErrMissingToken
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, apperrors.Wrap(err, "creating discord session")
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		session: session,
		cfg:     cfg,
		logger:  logging.WithComponent(logger, "discord"),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Session exposes the underlying session, e.g. for a ChannelSink.
func (c *Client) Session() *discordgo.Session { return c.session }

// SetRouter sets the router used for incoming commands. It must be called
// before Open.
func (c *Client) SetRouter(r *commands.Router) { c.router = r }

// OnReady registers fn to run once, after the first Ready event.
func (c *Client) OnReady(fn func()) { c.onReady = fn }

// Open connects to the gateway.
func (c *Client) Open() error {
	c.session.AddHandler(c.handleReady)
	c.session.AddHandler(c.handleMessage)
	c.session.AddHandler(c.handleInteraction)
	if err := c.session.Open(); err != nil {
		return apperrors.Wrap(err, "opening discord gateway")
	}
	return nil
}

// Close disconnects from the gateway and cancels in-flight handlers.
func (c *Client) Close() error {
	c.cancel()
	return c.session.Close()
}

// Latency returns the gateway heartbeat latency.
func (c *Client) Latency() time.Duration { return c.session.HeartbeatLatency() }

// Connected reports whether the session has received its Ready payload.
func (c *Client) Connected() bool { return c.session.DataReady }

// Guilds returns the number of guilds the bot is in.
func (c *Client) Guilds() int {
	if c.session.State == nil {
		return 0
	}
	c.session.State.RLock()
	defer c.session.State.RUnlock()
	return len(c.session.State.Guilds)
}

func (c *Client) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	c.logger.Info().
		Str("user", r.User.String()).
		Str("user_id", r.User.ID).
		Int("guilds", len(r.Guilds)).
		Msg("Connected to Discord")

	if err := s.UpdateWatchStatus(0, c.cfg.Status); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to set presence")
	}

	c.readyOnce.Do(func() {
		if c.cfg.SyncCommands && c.router != nil {
			c.syncCommands(s, r.User.ID)
		}
		if c.onReady != nil {
			c.onReady()
		}
	})
}

func (c *Client) syncCommands(s *discordgo.Session, appID string) {
	defs := SlashCommands(c.router.Commands())
	synced, err := s.ApplicationCommandBulkOverwrite(appID, c.cfg.GuildID, defs)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to sync slash commands")
		return
	}
	c.logger.Info().Int("count", len(synced)).Str("guild_id", c.cfg.GuildID).Msg("Synced slash commands")
}

func (c *Client) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || c.router == nil {
		return
	}
	name, tokens, ok := c.router.ParseMessage(m.Content)
	if !ok {
		return
	}
	cmd, known := c.router.Lookup(name)
	if !known {
		return
	}
	if cmd.Slow {
		_ = s.ChannelTyping(m.ChannelID)
	}

	ctx, cancel := context.WithTimeout(c.ctx, commandTimeout)
	defer cancel()

	reply := c.router.Dispatch(ctx, commands.Invocation{
		Style:  commands.StylePrefix,
		Name:   name,
		Tokens: tokens,
		Author: m.Author.Username,
	})
	if reply.Empty() {
		return
	}

	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         reply.Content,
		Embeds:          replyEmbeds(reply),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		c.logger.Warn().Err(err).Str("command", name).Msg("Failed to send reply")
	}
}

func (c *Client) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || c.router == nil {
		return
	}
	data := i.ApplicationCommandData()
	cmd, known := c.router.Lookup(data.Name)
	if !known {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, commandTimeout)
	defer cancel()

	deferred := false
	if cmd.Slow {
		if err := s.InteractionRespond(i.Interaction, deferResponse(cmd)); err != nil {
			c.logger.Warn().Err(err).Str("command", data.Name).Msg("Failed to defer interaction")
			return
		}
		deferred = true
	}

	reply := c.router.Dispatch(ctx, commands.Invocation{
		Style:   commands.StyleSlash,
		Name:    data.Name,
		Options: optionValues(data.Options),
		Author:  interactionUser(i),
	})
	if reply.Empty() {
		reply.Content = "Done."
	}

	var flags discordgo.MessageFlags
	if reply.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	var err error
	if deferred {
		_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content:         reply.Content,
			Embeds:          replyEmbeds(reply),
			Flags:           flags,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
	} else {
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:         reply.Content,
				Embeds:          replyEmbeds(reply),
				Flags:           flags,
				AllowedMentions: &discordgo.MessageAllowedMentions{},
			},
		})
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("command", data.Name).Msg("Failed to respond to interaction")
	}
}

// deferResponse acknowledges a slow slash command. The deferral fixes the
// visibility of the eventual reply, so posting commands defer ephemerally.
func deferResponse(cmd *commands.Command) *discordgo.InteractionResponse {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if cmd.Posts {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return resp
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "unknown"
}
