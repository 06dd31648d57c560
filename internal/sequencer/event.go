package sequencer

// EventKind identifies the few event types the engine cares about. The
// decoding layer collapses everything else (program changes, controllers,
// sysex, other meta events) before the stream reaches us.
type EventKind int

const (
	// KindTempo is a set-tempo meta event carrying MicrosPerQuarter.
	KindTempo EventKind = iota
	// KindNoteOn is a note-on with velocity > 0.
	KindNoteOn
	// KindNoteOff is a note-off, or a note-on with velocity 0 (running
	// status convention).
	KindNoteOff
)

// Event is one record of the merged, delta-annotated stream produced by the
// MIDI decoding layer. DeltaTicks is the tick distance to the previous event
// in the merged stream, not to the previous event of the same track.
type Event struct {
	DeltaTicks       int64
	Kind             EventKind
	Pitch            int   // 0-127, note events only
	Channel          int   // 0-15, note events only
	Velocity         int   // 0-127, note events only
	MicrosPerQuarter int64 // tempo events only
}
