package phonemizer

import "strings"

// PositionBeforeFirst marks a syllable group that precedes the first note of
// its phrase. Such a group has no note of its own; its timeline position is
// derived from the first real anchor during phrase assembly.
const PositionBeforeFirst = -1 << 31

// Note is one note of a phrase as provided by the song source. Positions and
// durations are in ticks; tone is a MIDI note number. The phonemizer only
// reads notes, it never mutates them.
type Note struct {
	Position     int
	Duration     int
	Tone         int
	Lyric        string
	PhoneticHint string
	Attributes   []PhonemeAttribute
}

// End returns the tick position just past the note.
func (n Note) End() int { return n.Position + n.Duration }

// attrColor returns the voice color requested for the symbol at the given
// index, or "" when no attribute is set for it.
func (n Note) attrColor(index int) string {
	for _, attr := range n.Attributes {
		if attr.Index == index {
			return attr.VoiceColor
		}
	}
	return ""
}

// PhonemeAttribute assigns a voice color to a single symbol of a note.
type PhonemeAttribute struct {
	Index      int
	VoiceColor string
}

// Symbol is a phonetic unit label with the speaker suffix it renders under.
// An empty Speaker means the singer's default voice.
type Symbol struct {
	Label   string
	Speaker string
}

// SyllableGroup pins an ordered run of symbols to a note. The group opened
// before the phrase's first vowel uses PositionBeforeFirst.
type SyllableGroup struct {
	Position int
	Tone     int
	Symbols  []Symbol
}

// Anchor fixes a group boundary on the millisecond timeline. SymbolIndex is
// the cumulative symbol count up to the boundary.
type Anchor struct {
	SymbolIndex int
	Ms          float64
}

// Phoneme is one emitted phonetic event, positioned relative to the start of
// the note that owns it. Offsets may be negative for word-initial consonants.
type Phoneme struct {
	Symbol     string `json:"symbol"`
	TickOffset int    `json:"tickOffset"`
}

// PhraseResult maps each note's start tick to its ordered phoneme events.
type PhraseResult map[int][]Phoneme

const (
	continuationPrefix   = "+"
	vowelExtensionPrefix = "+~"
)

// IsContinuation reports whether the lyric marks a note that extends the
// previous note's word instead of starting a new one.
func IsContinuation(lyric string) bool {
	return strings.HasPrefix(lyric, continuationPrefix)
}

// IsVowelExtension reports whether the lyric marks a continuation note that
// prolongs the previous vowel and therefore opens no syllable group.
func IsVowelExtension(lyric string) bool {
	return lyric == continuationPrefix || strings.HasPrefix(lyric, vowelExtensionPrefix)
}
