package sequencer

import "math"

// DefaultMicrosPerQuarter is the MIDI default tempo (120 BPM) assumed until
// the file's first set-tempo event.
const DefaultMicrosPerQuarter = 500000

// TempoSegment marks a tempo change: from StartTick onward the file plays at
// MicrosPerQuarter microseconds per quarter note, until the next segment.
type TempoSegment struct {
	StartTick        int64 `json:"start_tick"`
	MicrosPerQuarter int64 `json:"micros_per_quarter"`
}

// TempoMap is a piecewise-constant function from absolute tick to tempo,
// plus the file's pulses-per-quarter-note resolution. It always contains a
// segment at tick 0; segments are kept in stream order, so a later entry at
// the same tick shadows the earlier one during resolution.
type TempoMap struct {
	ppq      int
	segments []TempoSegment
}

// NewTempoMap returns a map holding only the default 120 BPM segment.
func NewTempoMap(ppq int) *TempoMap {
	return &TempoMap{
		ppq:      ppq,
		segments: []TempoSegment{{StartTick: 0, MicrosPerQuarter: DefaultMicrosPerQuarter}},
	}
}

// Add records a tempo change at absTick. Ticks must arrive non-decreasing,
// which the single forward pass over the event stream guarantees.
func (m *TempoMap) Add(absTick, microsPerQuarter int64) {
	m.segments = append(m.segments, TempoSegment{StartTick: absTick, MicrosPerQuarter: microsPerQuarter})
}

// PPQ returns the pulses-per-quarter-note resolution the map was built for.
func (m *TempoMap) PPQ() int {
	return m.ppq
}

// Segments returns the recorded tempo segments in stream order.
func (m *TempoMap) Segments() []TempoSegment {
	return m.segments
}

// FirstTempo returns the microseconds-per-quarter of the first explicit
// set-tempo event, or the default when the file never sets a tempo.
func (m *TempoMap) FirstTempo() int64 {
	if len(m.segments) > 1 {
		return m.segments[1].MicrosPerQuarter
	}
	return m.segments[0].MicrosPerQuarter
}

// Resolve converts an absolute tick position to milliseconds by integrating
// the tempo segments up to tick. A tick exactly on a segment boundary is
// charged at the new segment's tempo from that point on. The walk never
// mutates the map, so repeated calls are idempotent.
func (m *TempoMap) Resolve(tick int64) float64 {
	ms := 0.0
	prevTick := m.segments[0].StartTick
	prevTempo := m.segments[0].MicrosPerQuarter
	for _, seg := range m.segments[1:] {
		if tick <= seg.StartTick {
			break
		}
		ms += float64(seg.StartTick-prevTick) * msPerTick(prevTempo, m.ppq)
		prevTick, prevTempo = seg.StartTick, seg.MicrosPerQuarter
	}
	ms += float64(tick-prevTick) * msPerTick(prevTempo, m.ppq)
	return ms
}

func msPerTick(microsPerQuarter int64, ppq int) float64 {
	return float64(microsPerQuarter) / float64(ppq) / 1000.0
}

// round3 rounds to 3 decimal places. Only final note boundaries are rounded;
// the accumulation inside Resolve stays unrounded.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
