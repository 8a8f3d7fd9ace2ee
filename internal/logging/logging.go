// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	JSON       bool // plain JSON to stdout instead of the console writer
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       false,
		FilePath:   filepath.Join(home, ".config", "justtrades", "logs", "bot.log"),
		MaxSize:    50,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		if cfg.JSON {
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
				FormatLevel: func(i interface{}) string {
					if ll, ok := i.(string); ok {
						switch ll {
						case "debug":
							return "\033[36mDBG\033[0m"
						case "info":
							return "\033[32mINF\033[0m"
						case "warn":
							return "\033[33mWRN\033[0m"
						case "error":
							return "\033[31mERR\033[0m"
						default:
							return ll
						}
					}
					return "???"
				},
			})
		}
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Str("service", "justtrades").
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithCommand adds a command name to the logger context.
func WithCommand(logger zerolog.Logger, command string) zerolog.Logger {
	return logger.With().Str("command", command).Logger()
}

// WithJob adds a scheduled job name to the logger context.
func WithJob(logger zerolog.Logger, job string) zerolog.Logger {
	return logger.With().Str("job", job).Logger()
}

// WithChannel adds a channel key to the logger context.
func WithChannel(logger zerolog.Logger, channel string) zerolog.Logger {
	return logger.With().Str("channel", channel).Logger()
}

// LogCommand logs a handled command invocation.
func LogCommand(logger zerolog.Logger, command, style, author string, duration time.Duration, err error) {
	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.
		Str("event", "command").
		Str("command", command).
		Str("style", style).
		Str("author", author).
		Dur("duration", duration).
		Msg("Command handled")
}

// LogPost logs a message delivered to a channel, or the fallback taken.
func LogPost(logger zerolog.Logger, channel, title string, err error) {
	if err != nil {
		logger.Warn().
			Str("event", "post").
			Str("channel", channel).
			Str("title", title).
			Err(err).
			Msg("Channel post failed, replying inline")
		return
	}
	logger.Info().
		Str("event", "post").
		Str("channel", channel).
		Str("title", title).
		Msg("Posted to channel")
}

// LogFire logs the outcome of a scheduled tick.
func LogFire(logger zerolog.Logger, job, outcome string, at, next time.Time, err error) {
	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.
		Str("event", "fire").
		Str("job", job).
		Str("outcome", outcome).
		Time("at", at).
		Time("next", next).
		Msg("Scheduled tick")
}
