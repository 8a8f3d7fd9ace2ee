package security

import (
	"regexp"
	"strings"
)

// sensitiveFields contains field names that should be masked in output.
var sensitiveFields = map[string]bool{
	"token":        true,
	"bot_token":    true,
	"secret":       true,
	"password":     true,
	"api_key":      true,
	"access_token": true,
	"webhook_url":  true,
	"url":          true,
}

// sensitivePatterns contains regex patterns for secrets embedded in text.
var sensitivePatterns = []*regexp.Regexp{
	// Discord bot tokens: three dot-separated base64 segments
	regexp.MustCompile(`[MNO][A-Za-z\d_-]{23,27}\.[A-Za-z\d_-]{6}\.[A-Za-z\d_-]{27,40}`),
	// Telegram bot tokens
	regexp.MustCompile(`\d{8,10}:[A-Za-z\d_-]{35}`),
	// Discord webhook URLs
	regexp.MustCompile(`https://(?:\w+\.)?discord(?:app)?\.com/api/webhooks/\S+`),
}

// IsSensitiveField reports whether a config or log key holds a secret.
func IsSensitiveField(field string) bool {
	field = strings.ToLower(field)
	if sensitiveFields[field] {
		return true
	}
	return strings.HasSuffix(field, "_token") || strings.HasSuffix(field, "_secret")
}

// MaskSecrets masks secret-looking substrings of input.
func MaskSecrets(input string) string {
	result := input
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, MaskCredential)
	}
	return result
}

// MaskMap returns a copy of data with secrets masked, recursing into
// nested maps.
func MaskMap(data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case map[string]interface{}:
			result[k] = MaskMap(val)
		case string:
			if IsSensitiveField(k) {
				result[k] = MaskCredential(val)
			} else {
				result[k] = MaskSecrets(val)
			}
		default:
			result[k] = v
		}
	}
	return result
}
