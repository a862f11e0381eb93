// Package timeline converts between tick and millisecond positions of a
// song under a piecewise-constant tempo map.
package timeline

import (
	"fmt"
	"math"
	"sort"
)

// TempoChange sets the tempo from a tick position onward.
type TempoChange struct {
	Tick int
	BPM  float64
}

type segment struct {
	tick int
	ms   float64 // millisecond position of tick
	bpm  float64
}

// TempoMap is a monotonic tick↔millisecond mapping. Positions before tick 0
// extrapolate with the first tempo, so phrase lead-ins land on the same
// scale.
type TempoMap struct {
	tpq      int
	segments []segment
}

// NewTempoMap builds a constant-tempo map.
func NewTempoMap(ticksPerQuarter int, bpm float64) *TempoMap {
	m, _ := NewTempoMapWithChanges(ticksPerQuarter, []TempoChange{{Tick: 0, BPM: bpm}})
	return m
}

// NewTempoMapWithChanges builds a map from tempo changes sorted by tick. A
// change at tick 0 is required implicitly; when absent, 120 BPM is assumed
// up to the first change.
func NewTempoMapWithChanges(ticksPerQuarter int, changes []TempoChange) (*TempoMap, error) {
	if ticksPerQuarter <= 0 {
		return nil, fmt.Errorf("ticks per quarter must be positive, got %d", ticksPerQuarter)
	}
	sorted := append([]TempoChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })
	if len(sorted) == 0 || sorted[0].Tick > 0 {
		sorted = append([]TempoChange{{Tick: 0, BPM: 120}}, sorted...)
	}

	m := &TempoMap{tpq: ticksPerQuarter}
	ms := 0.0
	for i, c := range sorted {
		if c.BPM <= 0 {
			return nil, fmt.Errorf("tempo at tick %d must be positive, got %g", c.Tick, c.BPM)
		}
		if c.Tick < 0 {
			return nil, fmt.Errorf("tempo change at negative tick %d", c.Tick)
		}
		if i > 0 {
			prev := m.segments[len(m.segments)-1]
			if c.Tick == prev.tick {
				// later change at the same tick wins
				m.segments[len(m.segments)-1].bpm = c.BPM
				continue
			}
			ms = prev.ms + float64(c.Tick-prev.tick)*m.msPerTick(prev.bpm)
		}
		m.segments = append(m.segments, segment{tick: c.Tick, ms: ms, bpm: c.BPM})
	}
	return m, nil
}

// TicksPerQuarter returns the map's tick resolution.
func (m *TempoMap) TicksPerQuarter() int { return m.tpq }

func (m *TempoMap) msPerTick(bpm float64) float64 {
	return 60000 / (bpm * float64(m.tpq))
}

// TickToMs converts a tick position to milliseconds.
func (m *TempoMap) TickToMs(tick int) float64 {
	seg := m.segmentForTick(tick)
	return seg.ms + float64(tick-seg.tick)*m.msPerTick(seg.bpm)
}

// MsToTick converts a millisecond position to the nearest tick.
func (m *TempoMap) MsToTick(ms float64) int {
	return int(math.Round(m.tickAtMs(ms)))
}

// TicksBetweenMs returns the signed tick distance between two millisecond
// positions, rounded once so the result is consistent with repeated calls.
func (m *TempoMap) TicksBetweenMs(fromMs, toMs float64) int {
	return int(math.Round(m.tickAtMs(toMs) - m.tickAtMs(fromMs)))
}

func (m *TempoMap) tickAtMs(ms float64) float64 {
	seg := m.segmentForMs(ms)
	return float64(seg.tick) + (ms-seg.ms)/m.msPerTick(seg.bpm)
}

func (m *TempoMap) segmentForTick(tick int) segment {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].tick > tick })
	if i == 0 {
		return m.segments[0]
	}
	return m.segments[i-1]
}

func (m *TempoMap) segmentForMs(ms float64) segment {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].ms > ms })
	if i == 0 {
		return m.segments[0]
	}
	return m.segments[i-1]
}
