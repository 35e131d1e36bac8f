// Package snapshots keeps recent analysis runs in memory for the API.
package snapshots

import (
	"sync"

	"accesslens/internal/model"
)

type Store struct {
	mu    sync.RWMutex
	runs  []model.AnalysisRun
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 50
	}
	return &Store{limit: limit}
}

// Add appends a completed run, evicting the oldest beyond the limit.
func (s *Store) Add(run model.AnalysisRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) < s.limit {
		s.runs = append(s.runs, run)
		return
	}
	copy(s.runs, s.runs[1:])
	s.runs[len(s.runs)-1] = run
}

// Latest returns the most recent run, if any.
func (s *Store) Latest() (model.AnalysisRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return model.AnalysisRun{}, false
	}
	return s.runs[len(s.runs)-1], true
}

func (s *Store) List(limit int) []model.AnalysisRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	out := make([]model.AnalysisRun, 0, limit)
	for i := len(s.runs) - limit; i < len(s.runs); i++ {
		out = append(out, s.runs[i])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
}
