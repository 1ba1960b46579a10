package api

import (
	"testing"
	"time"
)

func TestLatencyStats_Snapshot(t *testing.T) {
	s := NewLatencyStats(time.Minute)
	if got := s.Snapshot(); got.Count != 0 {
		t.Fatalf("empty count = %d, want 0", got.Count)
	}
	for _, ms := range []int{40, 10, 30, 20} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}

	got := s.Snapshot()
	if got.Count != 4 {
		t.Fatalf("count = %d, want 4", got.Count)
	}
	if got.MinMs != 10 || got.MaxMs != 40 {
		t.Errorf("min/max = %v/%v, want 10/40", got.MinMs, got.MaxMs)
	}
	if got.AvgMs != 25 {
		t.Errorf("avg = %v, want 25", got.AvgMs)
	}
	if got.P50Ms != 25 {
		t.Errorf("p50 = %v, want 25", got.P50Ms)
	}
}

func TestLatencyStats_PrunesOldSamples(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewLatencyStats(time.Minute)
	s.now = func() time.Time { return now }

	s.Record(5 * time.Millisecond)
	now = now.Add(2 * time.Minute)
	s.Record(7 * time.Millisecond)

	got := s.Snapshot()
	if got.Count != 1 || got.MaxMs != 7 {
		t.Errorf("snapshot = %+v, want only the recent sample", got)
	}
}
