// Package security validates and sanitizes user input and masks secrets.
package security

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"justtrades-bot/internal/models"
)

// Validation patterns
var (
	// Quote symbols: letters, digits and the punctuation Yahoo uses for
	// futures (NQ=F), indices (^GSPC), share classes (BRK-B, BRK.B).
	symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.=&-]{0,19}$`)

	// Broadcast mentions and role pings.
	massMentionPattern = regexp.MustCompile(`@(everyone|here)`)
	rolePingPattern    = regexp.MustCompile(`<@&(\d+)>`)
)

// MaxFreeTextLength caps notes and other free text. It matches the chat
// platform's rich-field value limit.
const MaxFreeTextLength = 1024

// zeroWidthSpace breaks a mention without changing how it reads.
const zeroWidthSpace = "\u200b"

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// NormalizeSymbol upper-cases and validates a quote symbol.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	if symbol == "" {
		return "", &ValidationError{Field: "symbol", Value: symbol, Message: "symbol cannot be empty"}
	}
	if len(symbol) > 20 {
		return "", &ValidationError{Field: "symbol", Value: symbol, Message: "symbol too long (max 20 characters)"}
	}
	if !symbolPattern.MatchString(symbol) {
		return "", &ValidationError{Field: "symbol", Value: symbol, Message: "invalid symbol format"}
	}
	return symbol, nil
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return &ValidationError{Field: "date", Value: s, Message: "expected YYYY-MM-DD"}
	}
	return nil
}

// SanitizeText neutralizes broadcast mentions and role pings in user text
// and truncates it to MaxFreeTextLength.
func SanitizeText(s string) string {
	s = massMentionPattern.ReplaceAllString(s, "@"+zeroWidthSpace+"$1")
	s = rolePingPattern.ReplaceAllString(s, "<@&"+zeroWidthSpace+"$1>")
	return Truncate(strings.TrimSpace(s), MaxFreeTextLength)
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// MaskCredential masks a credential for display.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
