// Package midifile is the decoding boundary between Standard MIDI Files and
// the sequencer engine. It leans on gitlab.com/gomidi/midi/v2/smf for format
// handling and reduces the file to the merged, delta-annotated event stream
// the engine consumes: tempo changes and note boundaries, nothing else.
package midifile

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/tabseq-api/internal/sequencer"
)

// mergedEvent is one event positioned on the global tick axis before delta
// recomputation. track and seq keep the sort stable: ties on absTick fall
// back to track order, then in-track order, mirroring mido.merge_tracks.
type mergedEvent struct {
	absTick int64
	track   int
	seq     int
	event   sequencer.Event
}

// Parse decodes an SMF stream and returns the track-merged event stream
// plus the file's pulses-per-quarter-note resolution. SMPTE-timed files are
// rejected; the engine's tick arithmetic only makes sense for metric time.
func Parse(r io.Reader) ([]sequencer.Event, int, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read SMF: %w", err)
	}

	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported time format %v (expected metric ticks)", s.TimeFormat)
	}
	ppq := int(metric.Resolution())

	var merged []mergedEvent
	for ti, track := range s.Tracks {
		var absTick int64
		for si, ev := range track {
			absTick += int64(ev.Delta)

			converted, ok := convert(ev.Message)
			if !ok {
				continue
			}
			merged = append(merged, mergedEvent{
				absTick: absTick,
				track:   ti,
				seq:     si,
				event:   converted,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].absTick != merged[j].absTick {
			return merged[i].absTick < merged[j].absTick
		}
		if merged[i].track != merged[j].track {
			return merged[i].track < merged[j].track
		}
		return merged[i].seq < merged[j].seq
	})

	events := make([]sequencer.Event, 0, len(merged))
	var prevTick int64
	for _, m := range merged {
		ev := m.event
		ev.DeltaTicks = m.absTick - prevTick
		prevTick = m.absTick
		events = append(events, ev)
	}

	return events, ppq, nil
}

// convert maps an SMF message to an engine event. Note-ons with velocity 0
// surface as note-offs here already; gomidi folds the running-status
// convention into GetNoteEnd.
func convert(msg smf.Message) (sequencer.Event, bool) {
	var ch, key, vel uint8
	var bpm float64

	switch {
	case msg.GetMetaTempo(&bpm):
		return sequencer.Event{
			Kind:             sequencer.KindTempo,
			MicrosPerQuarter: microsPerQuarter(bpm),
		}, true
	case msg.GetNoteStart(&ch, &key, &vel):
		return sequencer.Event{
			Kind:     sequencer.KindNoteOn,
			Pitch:    int(key),
			Channel:  int(ch),
			Velocity: int(vel),
		}, true
	case msg.GetNoteEnd(&ch, &key):
		return sequencer.Event{
			Kind:    sequencer.KindNoteOff,
			Pitch:   int(key),
			Channel: int(ch),
		}, true
	}
	return sequencer.Event{}, false
}

// microsPerQuarter recovers the file's integer tempo value from the BPM
// float gomidi exposes. SMF stores tempo as microseconds per quarter note,
// so rounding the reciprocal reproduces the stored value exactly.
func microsPerQuarter(bpm float64) int64 {
	return int64(math.Round(60_000_000.0 / bpm))
}
