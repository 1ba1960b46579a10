package api

import (
	"slices"
	"sync"
	"time"
)

// LatencySnapshot aggregates the samples inside the window.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

type latencySample struct {
	at time.Time
	d  time.Duration
}

// LatencyStats keeps export render durations for a rolling window.
type LatencyStats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []latencySample
	now     func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

func (s *LatencyStats) Record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, latencySample{at: now, d: max(d, 0)})
}

func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	s.pruneLocked(s.now())
	ms := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		ms[i] = float64(sm.d) / float64(time.Millisecond)
	}
	s.mu.Unlock()

	if len(ms) == 0 {
		return LatencySnapshot{}
	}
	slices.Sort(ms)
	var sum float64
	for _, v := range ms {
		sum += v
	}
	return LatencySnapshot{
		Count: len(ms),
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: sum / float64(len(ms)),
		P50Ms: percentile(ms, 50),
		P95Ms: percentile(ms, 95),
	}
}

func (s *LatencyStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm latencySample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []float64, pct float64) float64 {
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	w := idx - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*w
}
