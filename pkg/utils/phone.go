package utils

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NormalizePhone strips every non-digit character from a phone number,
// including a leading +.
func NormalizePhone(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidWaID reports whether a normalized number can identify a
// conversation partner: 10 to 15 digits, not starting with zero.
func IsValidWaID(waID string) bool {
	if len(waID) < 10 || len(waID) > 15 {
		return false
	}
	if waID[0] == '0' {
		return false
	}
	for _, r := range waID {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsUsablePhoneField reports whether a raw wire field carries a value at
// all. Webhook producers are known to serialize absent fields as the
// strings "undefined" and "null".
func IsUsablePhoneField(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "undefined", "null":
		return false
	}
	return true
}

// ParseTimestamp converts a webhook unix-seconds timestamp string to a
// time. A zero time is returned for anything unparseable.
func ParseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
