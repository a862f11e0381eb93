// Package miditrack loads notes, lyrics and tempo information from standard
// MIDI files so scores can be fed to the phonemizer.
package miditrack

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ppapman1/OpenUtau/phonemizer"
	"github.com/ppapman1/OpenUtau/timeline"
)

// Score is an SMF reduced to what the phonemizer needs: a tempo map and the
// sung notes with their lyrics, in absolute ticks.
type Score struct {
	TicksPerQuarter int
	Tempo           *timeline.TempoMap
	Notes           []phonemizer.Note
}

// Read parses an SMF stream. Lyric meta events are attached to the next
// note-on; notes without a lyric stay empty and fall through the resolver's
// fallback chain.
func Read(r io.Reader) (*Score, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("smf uses unsupported time format %v", s.TimeFormat)
	}
	tpq := int(ticks.Resolution())

	var tempos []timeline.TempoChange
	var notes []phonemizer.Note

	for _, track := range s.Tracks {
		var abs int
		var pendingLyric string
		open := make(map[uint8]int) // key -> index into notes
		for _, ev := range track {
			abs += int(ev.Delta)
			msg := ev.Message

			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				tempos = append(tempos, timeline.TempoChange{Tick: abs, BPM: bpm})
				continue
			}
			var lyric string
			if msg.GetMetaLyric(&lyric) {
				pendingLyric = lyric
				continue
			}
			var channel, key, velocity uint8
			if msg.GetNoteStart(&channel, &key, &velocity) {
				notes = append(notes, phonemizer.Note{
					Position: abs,
					Tone:     int(key),
					Lyric:    pendingLyric,
				})
				open[key] = len(notes) - 1
				pendingLyric = ""
				continue
			}
			if msg.GetNoteEnd(&channel, &key) {
				if i, ok := open[key]; ok {
					notes[i].Duration = abs - notes[i].Position
					delete(open, key)
				}
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Position < notes[j].Position })
	tempo, err := timeline.NewTempoMapWithChanges(tpq, tempos)
	if err != nil {
		return nil, fmt.Errorf("tempo map: %w", err)
	}
	return &Score{TicksPerQuarter: tpq, Tempo: tempo, Notes: notes}, nil
}

// Load is a convenience wrapper that opens a file path.
func Load(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	score, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", path, err)
	}
	return score, nil
}

// Phrases splits the score's notes into phrases wherever the rest between
// consecutive notes reaches restGap ticks.
func (s *Score) Phrases(restGap int) [][]phonemizer.Note {
	if restGap <= 0 {
		restGap = 1
	}
	var phrases [][]phonemizer.Note
	for i, n := range s.Notes {
		if i == 0 || n.Position-s.Notes[i-1].End() >= restGap {
			phrases = append(phrases, nil)
		}
		phrases[len(phrases)-1] = append(phrases[len(phrases)-1], n)
	}
	return phrases
}
