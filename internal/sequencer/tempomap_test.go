package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTempoMapDefaultTempo(t *testing.T) {
	// No explicit set-tempo: one quarter note at 120 BPM is exactly 500 ms.
	m := NewTempoMap(480)

	assert.Equal(t, 0.0, m.Resolve(0))
	assert.InDelta(t, 500.0, m.Resolve(480), 1e-9)
	assert.InDelta(t, 1000.0, m.Resolve(960), 1e-9)
	assert.Equal(t, int64(DefaultMicrosPerQuarter), m.FirstTempo())

	// Resolve itself stays unrounded; only note boundaries get rounded.
	assert.Equal(t, 500.0, round3(m.Resolve(480)))
}

func TestTempoMapResolveAcrossSegments(t *testing.T) {
	// 120 BPM for the first quarter, then 60 BPM. A note spanning ticks
	// 0..960 covers 500 ms at the first tempo and 1000 ms at the second.
	m := NewTempoMap(480)
	m.Add(480, 1000000)

	assert.InDelta(t, 500.0, m.Resolve(480), 1e-9)
	assert.InDelta(t, 1500.0, m.Resolve(960), 1e-9)
	assert.InDelta(t, 2500.0, m.Resolve(1440), 1e-9)
}

func TestTempoMapBoundaryTickUsesNewTempo(t *testing.T) {
	// The boundary tick itself contributes nothing; everything past it is
	// charged at the new tempo.
	m := NewTempoMap(480)
	m.Add(480, 1000000)

	beforeBoundary := m.Resolve(479)
	atBoundary := m.Resolve(480)
	pastBoundary := m.Resolve(481)

	assert.InDelta(t, 500.0-msPerTick(DefaultMicrosPerQuarter, 480), beforeBoundary, 1e-9)
	assert.InDelta(t, 500.0, atBoundary, 1e-9)
	assert.InDelta(t, 500.0+msPerTick(1000000, 480), pastBoundary, 1e-9)
}

func TestTempoMapDuplicateTickLastWins(t *testing.T) {
	m := NewTempoMap(480)
	m.Add(480, 250000)
	m.Add(480, 1000000)

	// The zero-width 250000 segment contributes no time; ticks past 480
	// resolve at the later tempo.
	assert.InDelta(t, 500.0+1000.0, m.Resolve(960), 1e-9)
}

func TestTempoMapFirstTempoPrefersExplicit(t *testing.T) {
	m := NewTempoMap(96)
	m.Add(0, 600000)

	assert.Equal(t, int64(600000), m.FirstTempo())
}

func TestTempoMapResolveMonotonic(t *testing.T) {
	m := NewTempoMap(96)
	m.Add(100, 300000)
	m.Add(500, 750000)
	m.Add(900, 500000)

	prev := -1.0
	for tick := int64(0); tick <= 1200; tick += 7 {
		ms := m.Resolve(tick)
		assert.Greater(t, ms, prev, "tick %d", tick)
		prev = ms
	}
}

func TestTempoMapResolveIdempotent(t *testing.T) {
	m := NewTempoMap(480)
	m.Add(240, 300000)

	first := m.Resolve(1000)
	second := m.Resolve(1000)
	assert.Equal(t, first, second)
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.234, round3(1.23449))
	assert.Equal(t, 1.235, round3(1.2345))
	assert.Equal(t, 500.0, round3(500.0000001))
	assert.Equal(t, 0.0, round3(0))
}
