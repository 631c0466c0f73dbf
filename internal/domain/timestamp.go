package domain

import (
	"bytes"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp layout used on the wire.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// Timestamp is a time.Time that reads both RFC 3339 and zone-less
// LocalDateTimeLayout values (treated as UTC) and writes the latter in UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(LocalDateTimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", b)
	}
	s := string(b[1 : len(b)-1])
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = v.UTC()
		return nil
	}
	v, err := time.Parse(LocalDateTimeLayout, trimFraction(s))
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = v
	return nil
}

// trimFraction strips a trailing ".nnn" fractional second.
func trimFraction(s string) string {
	if len(s) > len(LocalDateTimeLayout) && s[len(LocalDateTimeLayout)] == '.' {
		return s[:len(LocalDateTimeLayout)]
	}
	return s
}
