// Package findings keeps a bounded in-memory buffer of anomaly findings.
package findings

import (
	"sync"
	"time"

	"accesslens/internal/model"
)

type Store struct {
	mu    sync.RWMutex
	buf   []model.Anomaly
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1000
	}
	return &Store{limit: limit}
}

func (s *Store) Add(anomalies ...model.Anomaly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range anomalies {
		if len(s.buf) < s.limit {
			s.buf = append(s.buf, a)
			continue
		}
		copy(s.buf, s.buf[1:])
		s.buf[len(s.buf)-1] = a
	}
}

func (s *Store) List(limit int) []model.Anomaly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Anomaly, 0, limit)
	start := len(s.buf) - limit
	for i := start; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

// Since returns findings detected at or after ts. Timestamps are RFC3339,
// so the string comparison follows detection order.
func (s *Store) Since(ts time.Time) []model.Anomaly {
	cutoff := ts.UTC().Format(time.RFC3339)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Anomaly, 0)
	for _, a := range s.buf {
		if a.Timestamp >= cutoff {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}
