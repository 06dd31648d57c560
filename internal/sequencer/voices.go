package sequencer

// Voice is one monophonic track of the output table set. After padding, all
// voices of a conversion have identical length.
type Voice []Note

// Pitches returns the voice's pitch column.
func (v Voice) Pitches() []float64 {
	return column(v, func(n Note) float64 { return float64(n.Pitch) })
}

// Velocities returns the voice's velocity column.
func (v Voice) Velocities() []float64 {
	return column(v, func(n Note) float64 { return float64(n.Velocity) })
}

// Durations returns the voice's duration column in milliseconds.
func (v Voice) Durations() []float64 {
	return column(v, func(n Note) float64 { return n.DurationMs })
}

// Onsets returns the voice's onset column in milliseconds.
func (v Voice) Onsets() []float64 {
	return column(v, func(n Note) float64 { return n.OnsetMs })
}

func column(v Voice, f func(Note) float64) []float64 {
	out := make([]float64, len(v))
	for i, n := range v {
		out[i] = f(n)
	}
	return out
}

// AssignVoices partitions notes (already sorted by onset) into exactly
// maxVoices monophonic voices using greedy interval scheduling:
//
//  1. a note goes to the first existing voice whose last note has ended by
//     the note's onset (lowest index wins ties),
//  2. otherwise a new voice is opened while the count is below maxVoices,
//  3. otherwise the note is forced into the voice with the smallest end
//     time (again lowest index on ties), accepting the overlap. Two notes
//     then share a slot sequence and will sound sequentially on the target.
//
// All voices are right-padded with rests to the longest voice length, and
// all-silent voices are appended so the result always has maxVoices entries.
func AssignVoices(notes []Note, maxVoices int) []Voice {
	if maxVoices < 1 {
		maxVoices = 1
	}

	var voices []Voice
	var endMs []float64

	for _, n := range notes {
		placed := false
		for i := range voices {
			if n.OnsetMs >= endMs[i] {
				voices[i] = append(voices[i], n)
				endMs[i] = n.OnsetMs + n.DurationMs
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		if len(voices) < maxVoices {
			voices = append(voices, Voice{n})
			endMs = append(endMs, n.OnsetMs+n.DurationMs)
			continue
		}

		// Overflow: steal the voice that frees up first.
		i := minIndex(endMs)
		voices[i] = append(voices[i], n)
		endMs[i] = n.OnsetMs + n.DurationMs
	}

	maxLen := 0
	for _, v := range voices {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}

	for i := range voices {
		for len(voices[i]) < maxLen {
			voices[i] = append(voices[i], Rest())
		}
	}
	for len(voices) < maxVoices {
		silent := make(Voice, maxLen)
		voices = append(voices, silent)
	}

	return voices
}

func minIndex(vals []float64) int {
	idx := 0
	for i, v := range vals {
		if v < vals[idx] {
			idx = i
		}
	}
	return idx
}
