// Package normalize turns loosely-parsed log fields into AccessEvents.
// Rows whose timestamp cannot be resolved are rejected here, so the
// analytics engine never sees an unparsable timestamp.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"accesslens/internal/config"
	"accesslens/internal/model"
)

type EventFields struct {
	Timestamp string
	UserID    string
	DoorID    string
	EventType string
	Extras    map[string]string
	Raw       string
}

func Normalize(fields EventFields, cfg *config.Config) (model.AccessEvent, error) {
	door := strings.TrimSpace(fields.DoorID)
	if door == "" {
		door = cfg.Ingest.Parser.DefaultDoorID
	}
	user := strings.TrimSpace(fields.UserID)
	if user == "" {
		return model.AccessEvent{}, errors.New("missing user id")
	}

	loc := time.UTC
	if cfg.Ingest.Parser.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Ingest.Parser.Timezone); err == nil {
			loc = l
		}
	}

	if strings.TrimSpace(fields.Timestamp) == "" {
		return model.AccessEvent{}, errors.New("missing timestamp")
	}
	ts, err := ParseTimestamp(fields.Timestamp, loc)
	if err != nil {
		return model.AccessEvent{}, fmt.Errorf("parse timestamp: %w", err)
	}

	return model.AccessEvent{
		Timestamp: ts.UTC(),
		UserID:    user,
		DoorID:    door,
		EventType: strings.TrimSpace(fields.EventType),
		Source:    "log",
		Raw:       fields.Raw,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"Jan 02 15:04:05",
	"Jan 2 15:04:05",
}

func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		if layout == "Jan 02 15:04:05" || layout == "Jan 2 15:04:05" {
			if t, err := time.ParseInLocation(layout, value, loc); err == nil {
				now := time.Now().In(loc)
				return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
