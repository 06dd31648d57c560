package sequencer

import "sort"

// noteKey identifies an open note. MIDI lets the same pitch sound on
// different channels independently, so the channel is part of the key.
type noteKey struct {
	pitch   int
	channel int
}

type openNote struct {
	onTick   int64
	velocity int
}

// boundaryPair is a matched on/off pair still in the tick domain. Resolution
// to milliseconds happens after the pass, once the tempo map is complete.
type boundaryPair struct {
	pitch    int
	velocity int
	onTick   int64
	offTick  int64
}

// Extract performs the single forward fold over the merged event stream,
// producing the tempo map and the completed note list together so both see
// the same running absolute tick.
//
// Pairing policy: a note-on for an already-open (pitch, channel) key
// overwrites the open note, silently losing it (last-on-wins). A note-off
// with no open note is ignored. Notes still open at end of stream are
// dropped; they have no offset to resolve.
func Extract(events []Event, ppq int) ([]Note, *TempoMap) {
	tmap := NewTempoMap(ppq)
	open := make(map[noteKey]openNote)
	var pairs []boundaryPair

	var absTick int64
	for _, ev := range events {
		absTick += ev.DeltaTicks

		switch ev.Kind {
		case KindTempo:
			tmap.Add(absTick, ev.MicrosPerQuarter)

		case KindNoteOn:
			if ev.Velocity == 0 {
				// Running-status note-off that the decoder did not
				// normalize; treat like KindNoteOff below.
				closeNote(open, &pairs, ev, absTick)
				continue
			}
			open[noteKey{ev.Pitch, ev.Channel}] = openNote{onTick: absTick, velocity: ev.Velocity}

		case KindNoteOff:
			closeNote(open, &pairs, ev, absTick)
		}
	}

	notes := make([]Note, 0, len(pairs))
	for _, p := range pairs {
		onsetMs := round3(tmap.Resolve(p.onTick))
		offsetMs := round3(tmap.Resolve(p.offTick))
		notes = append(notes, Note{
			Pitch:      p.pitch,
			Velocity:   p.velocity,
			DurationMs: round3(offsetMs - onsetMs),
			OnsetMs:    onsetMs,
		})
	}

	// Stable, so simultaneous equal-pitch notes keep stream order and the
	// voice assignment downstream stays deterministic.
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].OnsetMs != notes[j].OnsetMs {
			return notes[i].OnsetMs < notes[j].OnsetMs
		}
		return notes[i].Pitch < notes[j].Pitch
	})

	return notes, tmap
}

func closeNote(open map[noteKey]openNote, pairs *[]boundaryPair, ev Event, absTick int64) {
	key := noteKey{ev.Pitch, ev.Channel}
	on, ok := open[key]
	if !ok {
		return
	}
	delete(open, key)
	*pairs = append(*pairs, boundaryPair{
		pitch:    ev.Pitch,
		velocity: on.velocity,
		onTick:   on.onTick,
		offTick:  absTick,
	})
}
