package phonemizer

import (
	"errors"
	"fmt"
	"math"
)

// phrasePlan is the fully assembled phrase: the group sequence with its
// alignment anchors, the flattened model inputs, and the note-to-symbol
// spans used to redistribute results.
type phrasePlan struct {
	groups  []SyllableGroup
	symbols []Symbol
	// spans[i] is the half-open range of flat symbol indices note i owns.
	spans    [][2]int
	anchors  []Anchor
	tokens   []int64
	wordDiv  []int64
	wordDur  []int64
	phMidi   []int64
	speakers []string
}

// assemblePhrase stitches per-word syllable groups into one phrase-level
// sequence. A synthetic leading group carries the pause symbol plus the
// first word's pre-vowel consonants, placed HeadMs before the first real
// anchor; a trailing sentinel group at the phrase end closes the last
// alignment window.
func assemblePhrase(notes []Note, g2p G2P, cfg Config, vocab *Vocabulary, tl Timeline) (*phrasePlan, error) {
	if len(notes) == 0 {
		return nil, errors.New("empty phrase")
	}

	plan := &phrasePlan{
		groups: []SyllableGroup{{
			Position: PositionBeforeFirst,
			Tone:     notes[0].Tone,
			Symbols: []Symbol{{
				Label:   cfg.PauseSymbol,
				Speaker: cfg.SuffixFor(notes[0].attrColor(0), notes[0].Tone),
			}},
		}},
		spans: make([][2]int, len(notes)),
	}

	cum := len(plan.groups[0].Symbols)
	noteIdx := 0
	for _, word := range splitWords(notes) {
		seg := segmentWord(word, g2p, cfg)
		last := &plan.groups[len(plan.groups)-1]
		last.Symbols = append(last.Symbols, seg.leading...)
		plan.groups = append(plan.groups, seg.groups...)
		for i := range word {
			n := seg.noteSymbols[i]
			plan.spans[noteIdx] = [2]int{cum, cum + n}
			cum += n
			noteIdx++
		}
	}
	last := notes[len(notes)-1]
	plan.groups = append(plan.groups, SyllableGroup{Position: last.End()})

	for _, g := range plan.groups {
		plan.symbols = append(plan.symbols, g.Symbols...)
	}

	labels := make([]string, len(plan.symbols))
	plan.speakers = make([]string, len(plan.symbols))
	for i, s := range plan.symbols {
		labels[i] = s.Label
		plan.speakers[i] = s.Speaker
	}
	tokens, err := vocab.Tokenize(labels)
	if err != nil {
		return nil, fmt.Errorf("tokenize phrase: %w", err)
	}
	plan.tokens = tokens

	plan.anchors = groupAnchors(plan.groups, cfg.HeadMs, tl)
	plan.wordDiv = make([]int64, len(plan.groups)-1)
	for i, g := range plan.groups[:len(plan.groups)-1] {
		plan.wordDiv[i] = int64(len(g.Symbols))
	}
	plan.wordDur = frameGaps(plan.anchors, cfg.FrameMs())

	plan.phMidi = make([]int64, 0, len(plan.symbols))
	for _, g := range plan.groups {
		for range g.Symbols {
			plan.phMidi = append(plan.phMidi, int64(g.Tone))
		}
	}
	return plan, nil
}

// groupAnchors derives one alignment anchor per group boundary. The leading
// group's position is fixed at HeadMs before the first real anchor, whatever
// the model later predicts for it.
func groupAnchors(groups []SyllableGroup, headMs float64, tl Timeline) []Anchor {
	anchors := make([]Anchor, len(groups))
	cum := 0
	for i, g := range groups {
		anchors[i] = Anchor{SymbolIndex: cum}
		if g.Position != PositionBeforeFirst {
			anchors[i].Ms = tl.TickToMs(g.Position)
		}
		cum += len(g.Symbols)
	}
	if len(anchors) > 1 {
		anchors[0].Ms = anchors[1].Ms - headMs
	}
	return anchors
}

// frameGaps converts anchor positions to cumulative frame counts and
// differences consecutive counts, so rounding drift never accumulates across
// the phrase.
func frameGaps(anchors []Anchor, frameMs float64) []int64 {
	gaps := make([]int64, len(anchors)-1)
	prev := int64(math.Round(anchors[0].Ms / frameMs))
	for i, a := range anchors[1:] {
		cur := int64(math.Round(a.Ms / frameMs))
		gaps[i] = cur - prev
		prev = cur
	}
	return gaps
}
