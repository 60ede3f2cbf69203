package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// TimestampLayout is the canonical timestamp form: RFC 3339, UTC,
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// parseTimestamp accepts epoch milliseconds (number or digit string) and
// RFC 3339 strings.
func parseTimestamp(key string, raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, badTimestamp(key, string(raw))
		}
		if isDigits(s) {
			return fromMillis(key, s)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, badTimestamp(key, s)
		}
		return t.UTC().Truncate(time.Millisecond), nil
	}
	return fromMillis(key, string(raw))
}

func fromMillis(key, s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f < 0 {
			return time.Time{}, badTimestamp(key, s)
		}
		ms = int64(f)
	}
	if ms < 0 {
		return time.Time{}, badTimestamp(key, s)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// FormatTimestamp renders t in the canonical timestamp form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func badTimestamp(key, value string) error {
	return &FieldError{Field: key, Detail: strconv.Quote(value), Err: ErrBadTimestamp}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
