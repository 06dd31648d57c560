// Package render serializes a conversion result into the single combined
// PlugData init message the playback patch loads: one message box that
// resizes, re-labels and fills every voice table, plus the seq_size and
// seq_metro control tables.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/tabseq-api/internal/sequencer"
)

// InitMessage renders the full message box content. Statements are joined
// with backslash continuations so the whole thing pastes as one Pd message.
func InitMessage(res *sequencer.Result) string {
	lines := []string{
		fmt.Sprintf("; seq_size 0 %d", res.TableLen),
		fmt.Sprintf("; seq_metro 0 %s", Num(res.MetroMs)),
	}

	for vi, voice := range res.Voices {
		lines = append(lines, tableLines(fmt.Sprintf("seq_pitch_%d", vi), voice.Pitches(), res.PitchAxis)...)
		lines = append(lines, tableLines(fmt.Sprintf("seq_vel_%d", vi), voice.Velocities(), res.VelocityAxis)...)
		lines = append(lines, tableLines(fmt.Sprintf("seq_dur_ms_%d", vi), voice.Durations(), res.DurationAxis)...)
	}

	return strings.Join(lines, " \\\n") + "\n"
}

// tableLines emits the five semicolon statements for one table: resize,
// bounds, xlabel, ylabel, data.
func tableLines(name string, values []float64, axis sequencer.AxisSpec) []string {
	n := len(values)

	xMarks := make([]string, len(axis.TickPositions))
	for i, m := range axis.TickPositions {
		xMarks[i] = strconv.Itoa(m)
	}

	yMarks := make([]string, len(axis.ValueLabels))
	for i, l := range axis.ValueLabels {
		yMarks[i] = Num(l)
	}

	data := make([]string, n)
	for i, v := range values {
		data[i] = Num(v)
	}

	return []string{
		fmt.Sprintf("; %s resize %d", name, n),
		fmt.Sprintf("; %s bounds 0 %s %d %s", name, Num(axis.DisplayMax), n, Num(axis.DisplayMin)),
		fmt.Sprintf("; %s xlabel -0.5 %s", name, strings.Join(xMarks, " ")),
		fmt.Sprintf("; %s ylabel -0.05 %s", name, strings.Join(yMarks, " ")),
		fmt.Sprintf("; %s 0 %s", name, strings.Join(data, " ")),
	}
}

// Num formats a value the way the patch expects: fixed 3 decimals with
// trailing zeros and the dangling dot stripped, never an empty string.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
