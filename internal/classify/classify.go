// Package classify loads the per-device classification table the facility
// team maintains and buckets raw 0-10 security levels into the canonical
// categories. The analytics engine only ever reads the result.
package classify

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"accesslens/internal/model"
)

// row is the on-disk shape; security_level may be the raw numeric scale or
// an already-bucketed category word.
type row struct {
	DoorID        string `json:"door_id" yaml:"door_id"`
	SecurityLevel string `json:"security_level" yaml:"security_level"`
	IsEntrance    bool   `json:"is_entrance" yaml:"is_entrance"`
	IsStairway    bool   `json:"is_stairway" yaml:"is_stairway"`
	Floor         string `json:"floor" yaml:"floor"`
}

type document struct {
	Devices []row `json:"devices" yaml:"devices"`
}

// LoadTable reads a device table from CSV, YAML or JSON, keyed uniquely by
// door_id (a repeated door keeps the last row).
func LoadTable(path string) ([]model.DeviceAttributes, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return loadCSV(path)
	case ".yaml", ".yml", ".json":
		return loadDocument(path, ext == ".json")
	default:
		return nil, fmt.Errorf("unsupported device table format: %s", ext)
	}
}

func loadDocument(path string, asJSON bool) ([]model.DeviceAttributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if asJSON {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}
	return dedupe(doc.Devices), nil
}

func loadCSV(path string) ([]model.DeviceAttributes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read device table header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := idx["door_id"]; !ok {
		return nil, fmt.Errorf("device table missing door_id column")
	}

	var rows []row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{
			DoorID:        field(record, idx, "door_id"),
			SecurityLevel: field(record, idx, "security_level"),
			IsEntrance:    parseBool(field(record, idx, "is_entrance")),
			IsStairway:    parseBool(field(record, idx, "is_stairway")),
			Floor:         field(record, idx, "floor"),
		})
	}
	return dedupe(rows), nil
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func dedupe(rows []row) []model.DeviceAttributes {
	byDoor := make(map[string]int)
	out := make([]model.DeviceAttributes, 0, len(rows))
	for _, r := range rows {
		door := strings.TrimSpace(r.DoorID)
		if door == "" {
			continue
		}
		attr := model.DeviceAttributes{
			DoorID:        door,
			SecurityLevel: Category(r.SecurityLevel),
			IsEntrance:    r.IsEntrance,
			IsStairway:    r.IsStairway,
			Floor:         r.Floor,
		}
		if i, ok := byDoor[door]; ok {
			out[i] = attr
			continue
		}
		byDoor[door] = len(out)
		out = append(out, attr)
	}
	return out
}

// Category resolves a raw table value into a canonical category: numeric
// values go through the 0-10 bucketing, already-bucketed words pass
// through, anything else (including a blank cell) is Unknown. Unknown rows
// count in the distribution but not toward classification completeness.
func Category(raw string) model.SecurityCategory {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.SecurityUnknown
	}
	if level, err := strconv.Atoi(raw); err == nil {
		return model.BucketSecurityLevel(level)
	}
	switch model.SecurityCategory(strings.ToLower(raw)) {
	case model.SecurityUnclassified:
		return model.SecurityUnclassified
	case model.SecurityGreen:
		return model.SecurityGreen
	case model.SecurityYellow:
		return model.SecurityYellow
	case model.SecurityRed:
		return model.SecurityRed
	}
	return model.SecurityUnknown
}
