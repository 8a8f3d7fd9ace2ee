package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"justtrades-bot/internal/config"
	"justtrades-bot/internal/models"
)

// WebhookMirror posts a JSON copy of each message to an HTTP endpoint.
type WebhookMirror struct {
	url     string
	enabled bool
	client  *http.Client
}

// NewWebhookMirror creates a new WebhookMirror.
func NewWebhookMirror(cfg config.WebhookConfig) *WebhookMirror {
	return &WebhookMirror{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the mirror.
func (w *WebhookMirror) Name() string {
	return "webhook"
}

// IsEnabled returns whether the mirror is enabled.
func (w *WebhookMirror) IsEnabled() bool {
	return w.enabled
}

// Send posts msg as JSON.
func (w *WebhookMirror) Send(ctx context.Context, channel models.ChannelKey, msg Message) error {
	if !w.enabled {
		return nil
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := map[string]interface{}{
		"channel":     channel,
		"kind":        msg.Kind,
		"title":       msg.Title,
		"description": msg.Description,
		"fields":      msg.Fields,
		"footer":      msg.Footer,
		"timestamp":   ts.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "JustTradesBot/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// TelegramMirror copies messages into a Telegram chat.
type TelegramMirror struct {
	botToken string
	chatID   string
	enabled  bool
	baseURL  string
	client   *http.Client
}

// NewTelegramMirror creates a new TelegramMirror.
func NewTelegramMirror(cfg config.TelegramConfig) *TelegramMirror {
	return &TelegramMirror{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != "",
		baseURL:  "https://api.telegram.org",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the mirror.
func (t *TelegramMirror) Name() string {
	return "telegram"
}

// IsEnabled returns whether the mirror is enabled.
func (t *TelegramMirror) IsEnabled() bool {
	return t.enabled
}

// Send sends msg via the Telegram Bot API.
func (t *TelegramMirror) Send(ctx context.Context, channel models.ChannelKey, msg Message) error {
	if !t.enabled {
		return nil
	}

	// Telegram HTML parse mode; the bold markers used in chat are dropped.
	body := strings.ReplaceAll(msg.Text(), "**", "")
	lines := strings.SplitN(body, "\n", 2)
	text := fmt.Sprintf("<b>%s</b>", escapeHTML(lines[0]))
	if len(lines) > 1 {
		text += "\n" + escapeHTML(lines[1])
	}
	text += fmt.Sprintf("\n\n<i>#%s</i>", escapeHTML(string(channel)))

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// escapeHTML escapes HTML special characters for Telegram.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
