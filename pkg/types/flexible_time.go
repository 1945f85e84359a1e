package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var flexibleTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FlexibleTime accepts RFC3339 timestamps or bare YYYY-MM-DD dates from JSON bodies.
type FlexibleTime struct {
	time.Time
	// DateOnly is set when the input carried no time-of-day component.
	DateOnly bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	parsed, dateOnly, err := ParseFlexibleTime(raw)
	if err != nil {
		return err
	}
	f.Time = parsed
	f.DateOnly = dateOnly
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexibleTime) MarshalJSON() ([]byte, error) {
	if f.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339))
}

// Ptr returns nil for the zero value, otherwise the UTC time.
func (f FlexibleTime) Ptr() *time.Time {
	if f.Time.IsZero() {
		return nil
	}
	t := f.Time.UTC()
	return &t
}

// ParseFlexibleTime parses raw using the supported layouts.
func ParseFlexibleTime(raw string) (time.Time, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range flexibleTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q", raw)
}
