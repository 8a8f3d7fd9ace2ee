// Package config provides configuration management for the bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "justtrades-bot/internal/errors"
	"justtrades-bot/internal/models"
	"justtrades-bot/pkg/utils"
)

// Config holds all application configuration. It is read-only after Load.
type Config struct {
	Discord       DiscordConfig      `mapstructure:"discord"`
	Channels      map[string]string  `mapstructure:"channels"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Market        MarketConfig       `mapstructure:"market"`
	Journal       JournalConfig      `mapstructure:"journal"`
	Health        HealthConfig       `mapstructure:"health"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Calendar      CalendarConfig     `mapstructure:"calendar"`
}

// DiscordConfig holds chat-platform settings.
type DiscordConfig struct {
	Token        string `mapstructure:"token"`
	Prefix       string `mapstructure:"prefix"`
	GuildID      string `mapstructure:"guild_id"` // empty registers slash commands globally
	SyncCommands bool   `mapstructure:"sync_commands"`
	Status       string `mapstructure:"status"`
}

// ScheduleConfig holds the civil timezone and the auto-post jobs.
type ScheduleConfig struct {
	Timezone        string        `mapstructure:"timezone"`
	TimezoneLabel   string        `mapstructure:"timezone_label"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	Daily           JobConfig     `mapstructure:"daily"`
	Weekly          JobConfig     `mapstructure:"weekly"`
}

// JobConfig configures one scheduled digest.
type JobConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	At            string `mapstructure:"at"`    // HH:MM in the schedule timezone
	Guard         string `mapstructure:"guard"` // weekdays, every_day or a weekday name
	Channel       string `mapstructure:"channel"`
	Days          int    `mapstructure:"days"` // 0 = today only
	IncludeMarket bool   `mapstructure:"include_market"`
}

// MarketConfig holds market-data settings.
type MarketConfig struct {
	Symbols []SymbolConfig `mapstructure:"symbols"`
	Timeout time.Duration  `mapstructure:"timeout"`
}

// SymbolConfig is a tracked futures symbol and its display name.
type SymbolConfig struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
}

// JournalConfig holds trade journal settings.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// Addr returns the listen address of the health server.
func (h HealthConfig) Addr() string {
	return ":" + strings.TrimPrefix(h.Port, ":")
}

// NotificationConfig holds mirror notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, alerts_only, digests_only
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	JSON     bool   `mapstructure:"json"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// CalendarConfig holds Event Store seeding options.
type CalendarConfig struct {
	SeedFile string `mapstructure:"seed_file"` // replaces the built-in defaults when set
}

// defaultChannels are the channel IDs used when no CHANNEL_* variable is set.
var defaultChannels = map[models.ChannelKey]string{
	models.ChannelNewsHeadlines:    "1420078847629590608",
	models.ChannelDailyBias:        "1358534746879037642",
	models.ChannelBreakingNews:     "1347337500380893296",
	models.ChannelLiveTrades:       "1347337979751829659",
	models.ChannelTradeSetups:      "1347337927637602365",
	models.ChannelChartSetups:      "1367383497689268286",
	models.ChannelTradingGlossary:  "1358534448332935420",
	models.ChannelEconomicCalendar: "1359875411470716959",
	models.ChannelTradeAlerts:      "1358534900780630067",
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/justtrades"
	}
	return filepath.Join(home, ".config", "justtrades")
}

// Load loads configuration from the environment, an optional .env file and
// an optional config.yaml in configDir. If configDir is empty, uses the
// default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env files are optional; real environment variables take precedence.
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("discord.sync_commands", true)
	v.SetDefault("discord.status", "the markets | !help")

	for key, id := range defaultChannels {
		v.SetDefault("channels."+string(key), id)
	}

	v.SetDefault("schedule.timezone", utils.DefaultTimezone)
	v.SetDefault("schedule.timezone_label", "CT")
	v.SetDefault("schedule.delivery_timeout", 30*time.Second)

	v.SetDefault("schedule.daily.enabled", true)
	v.SetDefault("schedule.daily.at", "08:30")
	v.SetDefault("schedule.daily.guard", "weekdays")
	v.SetDefault("schedule.daily.channel", string(models.ChannelDailyBias))
	v.SetDefault("schedule.daily.days", 0)
	v.SetDefault("schedule.daily.include_market", true)

	v.SetDefault("schedule.weekly.enabled", true)
	v.SetDefault("schedule.weekly.at", "06:00")
	v.SetDefault("schedule.weekly.guard", "monday")
	v.SetDefault("schedule.weekly.channel", string(models.ChannelEconomicCalendar))
	v.SetDefault("schedule.weekly.days", 7)
	v.SetDefault("schedule.weekly.include_market", false)

	v.SetDefault("market.timeout", 10*time.Second)
	v.SetDefault("market.symbols", []map[string]string{
		{"symbol": "NQ=F", "name": "NQ (Nasdaq)"},
		{"symbol": "ES=F", "name": "ES (S&P 500)"},
		{"symbol": "YM=F", "name": "YM (Dow)"},
		{"symbol": "RTY=F", "name": "RTY (Russell)"},
		{"symbol": "GC=F", "name": "Gold"},
		{"symbol": "CL=F", "name": "Crude Oil"},
	})

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(DefaultConfigDir(), "journal.db"))

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", "8080")

	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.level", "all")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.file", false)
}

// bindEnv maps the deployment's environment variable names onto config keys.
// Every other key can be set as JUSTTRADES_<SECTION>_<KEY>.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("JUSTTRADES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"discord.token":                    "DISCORD_BOT_TOKEN",
		"discord.guild_id":                 "DISCORD_GUILD_ID",
		"health.port":                      "PORT",
		"logging.level":                    "LOG_LEVEL",
		"notifications.telegram.bot_token": "TELEGRAM_BOT_TOKEN",
		"notifications.telegram.chat_id":   "TELEGRAM_CHAT_ID",
		"notifications.webhook.url":        "NOTIFY_WEBHOOK_URL",
	}
	for _, key := range models.AllChannelKeys() {
		bindings["channels."+string(key)] = "CHANNEL_" + strings.ToUpper(string(key))
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env, "JUSTTRADES_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration. The Discord token is checked
// separately by RequireToken so offline commands work without it.
func (c *Config) Validate() error {
	if _, err := utils.LoadLocation(c.Schedule.Timezone); err != nil {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, err.Error())
	}
	if c.Schedule.DeliveryTimeout <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "schedule.delivery_timeout must be positive")
	}

	jobs := map[string]JobConfig{"daily": c.Schedule.Daily, "weekly": c.Schedule.Weekly}
	for name, job := range jobs {
		if !job.Enabled {
			continue
		}
		if _, _, err := utils.ParseClock(job.At); err != nil {
			return apperrors.Wrapf(apperrors.ErrInvalidSchedule, "schedule.%s.at: %v", name, err)
		}
		if !validGuard(job.Guard) {
			return apperrors.Wrapf(apperrors.ErrInvalidSchedule, "schedule.%s.guard: unknown guard %q", name, job.Guard)
		}
		if _, ok := models.ParseChannelKey(job.Channel); !ok {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "schedule.%s.channel: unknown channel %q", name, job.Channel)
		}
		if job.Days < 0 {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "schedule.%s.days must be non-negative", name)
		}
	}

	for key := range c.Channels {
		if _, ok := models.ParseChannelKey(key); !ok {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown channel %q", key)
		}
	}

	if c.Market.Timeout <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "market.timeout must be positive")
	}

	switch c.Notifications.Level {
	case "", "all", "alerts_only", "digests_only":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid notifications.level: %s", c.Notifications.Level)
	}

	return nil
}

// RequireToken fails fast when the chat-platform token is absent.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return apperrors.ErrMissingToken
	}
	return nil
}

// Location returns the civil timezone used for scheduling and display.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Schedule.Timezone)
}

// ChannelID returns the platform channel ID for a key, or "" when unset.
func (c *Config) ChannelID(key models.ChannelKey) string {
	return strings.TrimSpace(c.Channels[string(key)])
}

// ChannelIDs returns the configured channel IDs keyed by channel key.
func (c *Config) ChannelIDs() map[models.ChannelKey]string {
	ids := make(map[models.ChannelKey]string, len(c.Channels))
	for key, id := range c.Channels {
		if k, ok := models.ParseChannelKey(key); ok {
			ids[k] = strings.TrimSpace(id)
		}
	}
	return ids
}

func validGuard(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "weekdays", "every_day", "daily":
		return true
	}
	_, ok := utils.ParseWeekday(name)
	return ok
}

// Settings returns the configuration as nested maps keyed by the same names
// used in config.yaml. Secrets are not masked.
func (c *Config) Settings() map[string]interface{} {
	return settingsOf(reflect.ValueOf(*c))
}

func settingsOf(v reflect.Value) map[string]interface{} {
	out := make(map[string]interface{}, v.NumField())
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		out[key] = settingValue(v.Field(i))
	}
	return out
}

func settingValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}
	switch v.Kind() {
	case reflect.Struct:
		return settingsOf(v)
	case reflect.Slice:
		items := make([]interface{}, v.Len())
		for i := range items {
			items[i] = settingValue(v.Index(i))
		}
		return items
	case reflect.Map:
		m := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = settingValue(iter.Value())
		}
		return m
	default:
		return v.Interface()
	}
}
