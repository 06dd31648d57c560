package sequencer

// Note is a completed note: a note-on paired with its note-off, both
// boundaries resolved to milliseconds. Immutable once constructed.
type Note struct {
	Pitch      int     `json:"pitch"`    // 0-127
	Velocity   int     `json:"velocity"` // 1-127 for real notes, 0 for rests
	DurationMs float64 `json:"duration_ms"`
	OnsetMs    float64 `json:"onset_ms"`
}

// Rest is the silence placeholder used to pad voices to uniform length.
func Rest() Note {
	return Note{}
}

// IsRest reports whether the note is a padding placeholder.
func (n Note) IsRest() bool {
	return n.Velocity == 0
}
