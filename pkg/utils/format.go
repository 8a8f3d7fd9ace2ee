// Package utils provides shared utility functions.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice formats a value with two decimals and thousands separators,
// e.g. 21500.5 -> "21,500.50".
func FormatPrice(v decimal.Decimal) string {
	negative := v.IsNegative()
	str := v.Abs().StringFixed(2)
	parts := strings.SplitN(str, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	result := groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// SignPrefix returns "+" for zero or positive values. Negative values already
// carry their own sign.
func SignPrefix(v decimal.Decimal) string {
	if v.IsNegative() {
		return ""
	}
	return "+"
}

// FormatSigned formats a price change with an explicit sign.
func FormatSigned(v decimal.Decimal) string {
	return SignPrefix(v) + FormatPrice(v)
}

// FormatPercent formats a percentage with sign and two decimals.
func FormatPercent(v decimal.Decimal) string {
	return SignPrefix(v) + v.StringFixed(2) + "%"
}

// FormatRatio formats a reward-to-risk ratio as "1:2.5".
func FormatRatio(v decimal.Decimal) string {
	return "1:" + v.StringFixed(1)
}
