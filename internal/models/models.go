package models

import (
	"fmt"
	"strings"
	"time"
)

// Page is an offset/limit window.
type Page struct {
	From int
	Size int
}

func (p Page) Offset() int { return p.From }
func (p Page) Limit() int  { return p.Size }

// ParseTimestamp reads RFC 3339 first and falls back to the zone-less layout in UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(TimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t, nil
}

func parseOptionalTimestamp(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
