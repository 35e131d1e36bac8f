package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"accesslens/internal/normalize"
)

func ParseJSONBytes(data []byte) (*normalize.EventFields, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return ParseJSONMap(obj), nil
}

func ParseJSONMap(obj map[string]interface{}) *normalize.EventFields {
	fields := &normalize.EventFields{Extras: map[string]string{}}
	for key, val := range obj {
		fields.Extras[strings.ToLower(key)] = stringify(val)
	}
	fields.Timestamp = firstNonEmpty(fields.Extras, timestampAliases...)
	fields.UserID = firstNonEmpty(fields.Extras, userAliases...)
	fields.DoorID = firstNonEmpty(fields.Extras, doorAliases...)
	fields.EventType = firstNonEmpty(fields.Extras, eventAliases...)
	return fields
}

// stringify keeps integral JSON numbers out of scientific notation, so
// numeric unix timestamps survive the round trip through the extras map.
func stringify(val interface{}) string {
	if f, ok := val.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(val)
}
