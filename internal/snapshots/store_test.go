package snapshots

import (
	"strconv"
	"testing"

	"accesslens/internal/model"
)

func TestStoreEviction(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add(model.AnalysisRun{ID: strconv.Itoa(i)})
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	latest, ok := s.Latest()
	if !ok || latest.ID != "4" {
		t.Fatalf("Latest = %+v, %v", latest, ok)
	}
	runs := s.List(0)
	if len(runs) != 3 || runs[0].ID != "2" {
		t.Fatalf("List = %+v", runs)
	}
	if got := s.List(2); len(got) != 2 || got[0].ID != "3" {
		t.Fatalf("List(2) = %+v", got)
	}
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore(0)
	if _, ok := s.Latest(); ok {
		t.Fatal("Latest on empty store reported a run")
	}
	s.Add(model.AnalysisRun{ID: "a"})
	s.Clear()
	if s.Len() != 0 {
		t.Fatal("Clear left runs behind")
	}
}
