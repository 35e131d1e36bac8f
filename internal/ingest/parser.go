package ingest

import (
	"encoding/csv"
	"regexp"
	"strings"

	"accesslens/internal/normalize"
)

var (
	reTimestamp = regexp.MustCompile(`^\s*([0-9]{4}-[0-9]{2}-[0-9]{2}[ T][0-9:.+Z-]+)`)
	reKV        = regexp.MustCompile(`(?i)([a-zA-Z_]+)=([^\s]+)`)
	reSyslogTS  = regexp.MustCompile(`^\s*([A-Za-z]{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`)
)

// Parser turns one raw log line into canonical event fields. It accepts
// JSON objects, CSV rows (with or without a preceding header line), and
// plain key=value text, mapping exporter-specific column aliases onto the
// four canonical fields.
type Parser struct {
	csv *CSVParser
}

func NewParser() *Parser {
	return &Parser{csv: NewCSVParser()}
}

func (p *Parser) ParseLine(line string) (*normalize.EventFields, error) {
	trim := strings.TrimSpace(line)
	if trim == "" {
		return nil, nil
	}
	if looksLikeJSON(trim) {
		if fields, err := parseJSON(trim); err == nil {
			fields.Raw = line
			return fields, nil
		}
	}
	if strings.Contains(trim, ",") {
		fields, err := p.csv.Parse(trim)
		if err == nil {
			if fields == nil {
				return nil, nil
			}
			fields.Raw = line
			return fields, nil
		}
	}
	fields, err := parsePlain(trim)
	if err != nil {
		return nil, err
	}
	fields.Raw = line
	return fields, nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func parseJSON(line string) (*normalize.EventFields, error) {
	return ParseJSONBytes([]byte(line))
}

func parsePlain(line string) (*normalize.EventFields, error) {
	fields := &normalize.EventFields{Extras: map[string]string{}}
	ts, rest := extractTimestamp(line)
	fields.Timestamp = ts

	kv := map[string]string{}
	for _, match := range reKV.FindAllStringSubmatch(line, -1) {
		key := strings.ToLower(match[1])
		kv[key] = match[2]
	}
	fields.UserID = firstNonEmpty(kv, userAliases...)
	fields.DoorID = firstNonEmpty(kv, doorAliases...)
	fields.EventType = firstNonEmpty(kv, eventAliases...)
	for k, v := range kv {
		fields.Extras[k] = v
	}

	if fields.DoorID == "" && rest != "" {
		tokens := strings.Fields(rest)
		if len(tokens) > 0 {
			fields.DoorID = tokens[0]
		}
	}
	if fields.Timestamp == "" {
		if ts2, _ := extractTimestamp(rest); ts2 != "" {
			fields.Timestamp = ts2
		}
	}
	return fields, nil
}

func extractTimestamp(line string) (string, string) {
	m := reTimestamp.FindStringSubmatchIndex(line)
	if len(m) >= 4 {
		ts := strings.TrimSpace(line[m[2]:m[3]])
		rest := strings.TrimSpace(line[m[3]:])
		return ts, rest
	}
	m = reSyslogTS.FindStringSubmatchIndex(line)
	if len(m) >= 4 {
		ts := strings.TrimSpace(line[m[2]:m[3]])
		rest := strings.TrimSpace(line[m[3]:])
		return ts, rest
	}
	return "", line
}

// Column aliases seen across badge-controller exports.
var (
	timestampAliases = []string{"timestamp", "time", "ts", "event_time", "datetime"}
	userAliases      = []string{"user_id", "user", "userid", "person", "person_id", "badge", "badge_id", "card", "card_id"}
	doorAliases      = []string{"door_id", "door", "doorid", "device", "device_id", "reader", "reader_id", "terminal"}
	eventAliases     = []string{"event_type", "event", "eventtype", "result", "status", "outcome", "access_result"}
)

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}

type CSVParser struct {
	header []string
}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(line string) (*normalize.EventFields, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	record, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, nil
	}
	if p.header == nil && looksLikeHeader(record) {
		p.header = normalizeHeader(record)
		return nil, nil
	}
	fields := &normalize.EventFields{Extras: map[string]string{}}
	if p.header != nil {
		for i, name := range p.header {
			if i >= len(record) {
				break
			}
			assignField(fields, name, record[i])
		}
	} else {
		// Positional fallback: timestamp, user, door, event type.
		if len(record) >= 1 {
			fields.Timestamp = record[0]
		}
		if len(record) >= 2 {
			fields.UserID = record[1]
		}
		if len(record) >= 3 {
			fields.DoorID = record[2]
		}
		if len(record) >= 4 {
			fields.EventType = record[3]
		}
	}
	return fields, nil
}

func looksLikeHeader(record []string) bool {
	known := map[string]struct{}{}
	for _, lists := range [][]string{timestampAliases, userAliases, doorAliases, eventAliases} {
		for _, alias := range lists {
			known[alias] = struct{}{}
		}
	}
	for _, v := range record {
		v = strings.ToLower(strings.TrimSpace(v))
		if _, ok := known[v]; ok {
			return true
		}
	}
	return false
}

func normalizeHeader(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func assignField(fields *normalize.EventFields, name string, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	switch {
	case contains(timestampAliases, name):
		fields.Timestamp = value
	case contains(userAliases, name):
		fields.UserID = value
	case contains(doorAliases, name):
		fields.DoorID = value
	case contains(eventAliases, name):
		fields.EventType = value
	default:
		if fields.Extras != nil {
			fields.Extras[name] = value
		}
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
