package miditrack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ppapman1/OpenUtau/phonemizer"
)

func writeTestScore(t *testing.T) *bytes.Reader {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, smf.MetaLyric("sa"))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, smf.MetaLyric("+~"))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(240, midi.NoteOff(0, 60))
	// a rest of a full quarter before the next word
	tr.Add(480, smf.MetaLyric("ka"))
	tr.Add(0, midi.NoteOn(0, 62, 100))
	tr.Add(480, midi.NoteOff(0, 62))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadScore(t *testing.T) {
	score, err := Read(writeTestScore(t))
	require.NoError(t, err)

	assert.Equal(t, 480, score.TicksPerQuarter)
	require.Len(t, score.Notes, 3)
	assert.Equal(t, phonemizer.Note{Position: 0, Duration: 480, Tone: 60, Lyric: "sa"}, score.Notes[0])
	assert.Equal(t, phonemizer.Note{Position: 480, Duration: 240, Tone: 60, Lyric: "+~"}, score.Notes[1])
	assert.Equal(t, phonemizer.Note{Position: 1200, Duration: 480, Tone: 62, Lyric: "ka"}, score.Notes[2])

	// tempo map picked up the 120 BPM meta event
	assert.InDelta(t, 500, score.Tempo.TickToMs(480), 1e-9)
}

func TestPhrases(t *testing.T) {
	score, err := Read(writeTestScore(t))
	require.NoError(t, err)

	phrases := score.Phrases(240)
	require.Len(t, phrases, 2)
	assert.Len(t, phrases[0], 2)
	assert.Len(t, phrases[1], 1)

	// contiguous notes never split, whatever the threshold
	one := score.Phrases(10000)
	require.Len(t, one, 1)
	assert.Len(t, one[0], 3)
}
