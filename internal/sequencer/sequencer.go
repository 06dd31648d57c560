// Package sequencer converts a merged MIDI event stream into fixed-size
// monophonic voice tables: it builds the tempo map, resolves tick positions
// to milliseconds, pairs note-on/note-off events into notes, and packs the
// notes into a hard-capped number of voices for table-driven playback.
package sequencer

import (
	"errors"
	"math"
)

// ErrNoNotes is returned when extraction finds no completed notes. It is
// terminal for the whole conversion; no partial output is produced.
var ErrNoNotes = errors.New("no notes found in MIDI stream")

const (
	// PitchMax and VelocityMax bound the logical axis ranges.
	PitchMax    = 127
	VelocityMax = 127
)

// Result is everything one conversion produces: the padded voices, their
// axis specs, and the global scalars the playback patch needs.
type Result struct {
	Voices []Voice `json:"voices"`

	NoteCount int     `json:"note_count"`
	PPQ       int     `json:"ppq"`
	BPM       float64 `json:"bpm"`
	// MetroMs is the metronome interval derived from the first tempo
	// event: microseconds per quarter divided by 1000.
	MetroMs float64 `json:"metro_ms"`
	// TableLen is the uniform per-voice table length after padding.
	TableLen      int     `json:"table_len"`
	MaxDurationMs float64 `json:"max_duration_ms"`

	PitchAxis    AxisSpec `json:"pitch_axis"`
	VelocityAxis AxisSpec `json:"velocity_axis"`
	DurationAxis AxisSpec `json:"duration_axis"`
	OnsetAxis    AxisSpec `json:"onset_axis"`
}

// Convert runs the whole engine over a merged event stream: extraction,
// voice assignment, axis derivation, scalar computation. It is a pure batch
// computation; rerunning it on identical input yields identical output.
func Convert(events []Event, ppq, maxVoices int) (*Result, error) {
	notes, tmap := Extract(events, ppq)
	if len(notes) == 0 {
		return nil, ErrNoNotes
	}

	voices := AssignVoices(notes, maxVoices)
	tableLen := len(voices[0])

	maxDur := 0.0
	maxOnset := 0.0
	for _, n := range notes {
		if n.DurationMs > maxDur {
			maxDur = n.DurationMs
		}
		if n.OnsetMs > maxOnset {
			maxOnset = n.OnsetMs
		}
	}

	firstTempo := tmap.FirstTempo()

	res := &Result{
		Voices:        voices,
		NoteCount:     len(notes),
		PPQ:           ppq,
		BPM:           math.Round(60_000_000.0/float64(firstTempo)*100) / 100,
		MetroMs:       round3(float64(firstTempo) / 1000.0),
		TableLen:      tableLen,
		MaxDurationMs: maxDur,
	}

	// All voices share one length, so one axis spec per dimension covers
	// every table of that dimension.
	res.PitchAxis = DeriveAxis(voices[0].Pitches(), 0, PitchMax)
	res.VelocityAxis = DeriveAxis(voices[0].Velocities(), 0, VelocityMax)
	res.DurationAxis = DeriveAxis(voices[0].Durations(), 0, maxDur)
	res.OnsetAxis = DeriveAxis(voices[0].Onsets(), 0, maxOnset)

	return res, nil
}
