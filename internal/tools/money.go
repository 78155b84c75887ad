package tools

import (
	"strconv"
	"strings"
	"unicode"
)

// FormatWon renders an amount with thousands separators ("15000" → "15,000").
func FormatWon(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ParsePrice extracts the numeric value from a price string like
// "15,000원". Non-digit characters are dropped; no digits means zero.
func ParsePrice(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
