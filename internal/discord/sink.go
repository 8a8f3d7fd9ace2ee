package discord

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
	"justtrades-bot/internal/notify"
)

// embedSender is the part of *discordgo.Session the sink needs.
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelSink posts messages to the Discord channel configured for each key.
type ChannelSink struct {
	sender   embedSender
	channels map[models.ChannelKey]string
	timeout  time.Duration
}

// NewChannelSink creates a sink over sender. Keys with an empty ID are
// treated as missing channels.
func NewChannelSink(sender embedSender, channels map[models.ChannelKey]string, timeout time.Duration) *ChannelSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChannelSink{sender: sender, channels: channels, timeout: timeout}
}

// Post implements notify.Sink. A channel that is unconfigured, unknown to
// Discord, or not visible to the bot yields ErrChannelNotFound.
func (s *ChannelSink) Post(ctx context.Context, channel models.ChannelKey, msg notify.Message) error {
	id := s.channels[channel]
	if id == "" {
		return notify.ChannelNotFound(channel)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.sender.ChannelMessageSendEmbed(id, ToEmbed(msg), discordgo.WithContext(ctx)); err != nil {
		if isChannelMissing(err) {
			return notify.ChannelNotFound(channel)
		}
		return apperrors.NewSinkError(string(channel), err)
	}
	return nil
}

func isChannelMissing(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
