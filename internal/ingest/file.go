package ingest

import (
	"bufio"
	"os"

	"accesslens/internal/config"
	"accesslens/internal/model"
	"accesslens/internal/normalize"
)

// LoadFile parses a complete log or CSV export in one pass, for the
// one-shot analysis path. Returns the events that normalized cleanly and
// the number of dropped rows.
func LoadFile(path string, cfg *config.Config) ([]model.AccessEvent, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	parser := NewParser()
	var events []model.AccessEvent
	dropped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 8192), 1024*1024)
	for scanner.Scan() {
		fields, err := parser.ParseLine(scanner.Text())
		if err != nil {
			dropped++
			continue
		}
		if fields == nil {
			continue
		}
		ev, err := normalize.Normalize(*fields, cfg)
		if err != nil {
			dropped++
			continue
		}
		ev.Source = "file"
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, dropped, err
	}
	return events, dropped, nil
}
