package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# JustTrades bot configuration
# Environment variables override this file. The bot token is read from
# DISCORD_BOT_TOKEN and channel IDs from CHANNEL_<KEY> (e.g. CHANNEL_DAILY_BIAS).

discord:
  # Command prefix for chat-style commands
  prefix: "!"
  # Guild to register slash commands in; empty registers them globally
  guild_id: ""
  sync_commands: true
  status: "the markets | !help"

channels:
  news_headlines: "1420078847629590608"
  daily_bias: "1358534746879037642"
  breaking_news: "1347337500380893296"
  live_trades: "1347337979751829659"
  trade_setups: "1347337927637602365"
  chart_setups: "1367383497689268286"
  trading_glossary: "1358534448332935420"
  economic_calendar: "1359875411470716959"
  trade_alerts: "1358534900780630067"

schedule:
  timezone: "America/Chicago"
  timezone_label: "CT"
  delivery_timeout: 30s
  daily:
    enabled: true
    at: "08:30"
    # weekdays, every_day or a weekday name
    guard: weekdays
    channel: daily_bias
    days: 0
    include_market: true
  weekly:
    enabled: true
    at: "06:00"
    guard: monday
    channel: economic_calendar
    days: 7
    include_market: false

market:
  timeout: 10s
  symbols:
    - { symbol: "NQ=F", name: "NQ (Nasdaq)" }
    - { symbol: "ES=F", name: "ES (S&P 500)" }
    - { symbol: "YM=F", name: "YM (Dow)" }
    - { symbol: "RTY=F", name: "RTY (Russell)" }
    - { symbol: "GC=F", name: "Gold" }
    - { symbol: "CL=F", name: "Crude Oil" }

journal:
  enabled: true
  # path: ~/.config/justtrades/journal.db

health:
  enabled: true
  port: "8080"

notifications:
  enabled: false
  # all, alerts_only, digests_only
  level: all
  webhook:
    enabled: false
    url: ""
  telegram:
    enabled: false
    bot_token: ""
    chat_id: ""

logging:
  level: info
  json: false
  file: false

calendar:
  # YAML list of events replacing the built-in seed
  seed_file: ""
`

// TemplateFileName is the name of the config file inside the config dir.
const TemplateFileName = "config.yaml"

// WriteTemplate writes a commented config.yaml to configDir and returns its
// path. An existing file is left untouched unless force is set.
func WriteTemplate(configDir string, force bool) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, TemplateFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}
	return path, nil
}
