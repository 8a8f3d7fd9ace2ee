package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"justtrades-bot/internal/config"
	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/models"
)

// Sink posts a message to a named channel. Implementations return an error
// wrapping errors.ErrChannelNotFound when the channel cannot be resolved.
type Sink interface {
	Post(ctx context.Context, channel models.ChannelKey, msg Message) error
}

// Mirror is a secondary destination that receives copies of channel posts.
type Mirror interface {
	Name() string
	IsEnabled() bool
	Send(ctx context.Context, channel models.ChannelKey, msg Message) error
}

// Level filters which message kinds are mirrored.
type Level string

const (
	LevelAll         Level = "all"
	LevelAlertsOnly  Level = "alerts_only"
	LevelDigestsOnly Level = "digests_only"
)

// MultiSink posts to a primary sink and copies successful posts to mirrors.
// Mirror failures are logged and never reported to the caller.
type MultiSink struct {
	primary Sink
	mirrors []Mirror
	level   Level
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewMultiSink wraps primary with the mirrors enabled in cfg.
func NewMultiSink(primary Sink, cfg config.NotificationConfig, logger zerolog.Logger) *MultiSink {
	ms := &MultiSink{
		primary: primary,
		level:   Level(cfg.Level),
		logger:  logging.WithComponent(logger, "notify"),
	}
	if ms.level == "" {
		ms.level = LevelAll
	}
	if !cfg.Enabled {
		return ms
	}

	if cfg.Webhook.Enabled {
		ms.mirrors = append(ms.mirrors, NewWebhookMirror(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		ms.mirrors = append(ms.mirrors, NewTelegramMirror(cfg.Telegram))
	}
	return ms
}

// AddMirror adds a mirror destination.
func (ms *MultiSink) AddMirror(m Mirror) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.mirrors = append(ms.mirrors, m)
}

func (ms *MultiSink) shouldMirror(kind Kind) bool {
	switch ms.level {
	case LevelAlertsOnly:
		return kind == KindAlert
	case LevelDigestsOnly:
		return kind == KindDigest
	default:
		return true
	}
}

// Post delivers msg to the primary sink, then to every enabled mirror.
func (ms *MultiSink) Post(ctx context.Context, channel models.ChannelKey, msg Message) error {
	err := ms.primary.Post(ctx, channel, msg)
	logging.LogPost(ms.logger, string(channel), msg.Title, err)
	if err != nil {
		return err
	}

	if !ms.shouldMirror(msg.Kind) {
		return nil
	}

	ms.mu.RLock()
	mirrors := ms.mirrors
	ms.mu.RUnlock()

	for _, m := range mirrors {
		if !m.IsEnabled() {
			continue
		}
		if err := m.Send(ctx, channel, msg); err != nil {
			logger := logging.WithChannel(ms.logger, string(channel))
			logger.Warn().
				Str("mirror", m.Name()).
				Err(err).
				Msg("Mirror delivery failed")
		}
	}
	return nil
}

// ChannelNotFound returns the error sinks report for an unresolvable channel.
func ChannelNotFound(channel models.ChannelKey) error {
	return apperrors.NewSinkError(string(channel), apperrors.ErrChannelNotFound)
}

// Post records a delivered message.
type Post struct {
	Channel models.ChannelKey
	Message Message
}

// MemorySink keeps posts in memory. Channels listed in Missing fail with
// ErrChannelNotFound.
type MemorySink struct {
	mu      sync.Mutex
	posts   []Post
	Missing map[models.ChannelKey]bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{Missing: make(map[models.ChannelKey]bool)}
}

// Post implements Sink.
func (s *MemorySink) Post(ctx context.Context, channel models.ChannelKey, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Missing[channel] {
		return ChannelNotFound(channel)
	}
	s.posts = append(s.posts, Post{Channel: channel, Message: msg})
	return nil
}

// Posts returns a copy of the recorded posts.
func (s *MemorySink) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}
