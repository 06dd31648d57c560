package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/tabseq-api/internal/sequencer"
)

func singleNoteResult(t *testing.T) *sequencer.Result {
	t.Helper()

	events := []sequencer.Event{
		{Kind: sequencer.KindNoteOn, Pitch: 60, Velocity: 100},
		{DeltaTicks: 480, Kind: sequencer.KindNoteOff, Pitch: 60},
	}
	res, err := sequencer.Convert(events, 480, 2)
	require.NoError(t, err)
	return res
}

func TestInitMessageHeader(t *testing.T) {
	msg := InitMessage(singleNoteResult(t))
	lines := strings.Split(strings.TrimSuffix(msg, "\n"), " \\\n")

	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "; seq_size 0 1", lines[0])
	assert.Equal(t, "; seq_metro 0 500", lines[1])
}

func TestInitMessageTablesPerVoice(t *testing.T) {
	res := singleNoteResult(t)
	msg := InitMessage(res)

	// Two header lines plus five statements per table, three tables per
	// voice, two voices.
	lines := strings.Split(strings.TrimSuffix(msg, "\n"), " \\\n")
	assert.Len(t, lines, 2+len(res.Voices)*3*5)

	for vi := 0; vi < len(res.Voices); vi++ {
		for _, dim := range []string{"seq_pitch", "seq_vel", "seq_dur_ms"} {
			name := dim + "_" + string(rune('0'+vi))
			assert.Contains(t, msg, "; "+name+" resize 1")
			assert.Contains(t, msg, "; "+name+" bounds 0 ")
			assert.Contains(t, msg, "; "+name+" xlabel -0.5 0")
			assert.Contains(t, msg, "; "+name+" ylabel -0.05 ")
		}
	}
}

func TestInitMessageDataLines(t *testing.T) {
	msg := InitMessage(singleNoteResult(t))

	assert.Contains(t, msg, "; seq_pitch_0 0 60")
	assert.Contains(t, msg, "; seq_vel_0 0 100")
	assert.Contains(t, msg, "; seq_dur_ms_0 0 500")
	// The second voice is all rests.
	assert.Contains(t, msg, "; seq_pitch_1 0 0")
}

func TestInitMessageBounds(t *testing.T) {
	msg := InitMessage(singleNoteResult(t))

	// Pitch axis: 0..127 padded to 139.7 above, clamped at 0 below.
	assert.Contains(t, msg, "; seq_pitch_0 bounds 0 139.7 1 0")
}

func TestInitMessageEndsWithNewline(t *testing.T) {
	msg := InitMessage(singleNoteResult(t))
	assert.True(t, strings.HasSuffix(msg, "\n"))
	assert.False(t, strings.HasSuffix(msg, " \\\n"))
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{500.0004, "500"},
		{666.667, "666.667"},
		{1.5, "1.5"},
		{1.25, "1.25"},
		{0.001, "0.001"},
		{139.7, "139.7"},
		{-2.5, "-2.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Num(tt.in), "Num(%v)", tt.in)
	}
}
