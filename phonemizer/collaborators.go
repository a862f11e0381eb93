package phonemizer

import "context"

// G2P exposes the grapheme-to-phoneme capability the phonemizer queries. The
// dictionary format and fallback chain behind it are not this package's
// concern; see the lexicon package for the file-backed implementation.
type G2P interface {
	// Query resolves a lyric to its phoneme sequence, or nil when unknown.
	Query(lyric string) []string
	IsValidSymbol(symbol string) bool
	IsVowel(symbol string) bool
}

// Timeline converts between tick and millisecond positions of a song. The
// conversion must be monotonic; sub-tick rounding has to be consistent so
// repeated conversions of the same position agree.
type Timeline interface {
	TickToMs(tick int) float64
	MsToTick(ms float64) int
	// TicksBetweenMs returns the signed tick distance between two millisecond
	// positions.
	TicksBetweenMs(fromMs, toMs float64) int
}

// Encoding is the linguistic encoder's output, threaded into the duration
// predictor. Data is the flattened encoder representation, Mask the padding
// mask; both are opaque to the phonemizer beyond their shapes.
type Encoding struct {
	Data      []float32
	Shape     []int64
	Mask      []bool
	MaskShape []int64
}

// LinguisticEncoder runs the phrase-level linguistic model. Inputs are a
// single batch: token ids, symbols per word boundary, and frames per word
// gap.
type LinguisticEncoder interface {
	Encode(ctx context.Context, tokens, wordDiv, wordDur []int64) (*Encoding, error)
}

// DurationPredictor predicts one duration per symbol, in model frame units.
// spkEmbed is a flattened per-symbol speaker embedding and may be nil for
// single-speaker singers.
type DurationPredictor interface {
	Predict(ctx context.Context, enc *Encoding, phMidi []int64, spkEmbed []float32) ([]float32, error)
}

// SpeakerEmbedder produces the per-symbol speaker embedding for an ordered
// list of speaker suffixes. Results are cached by the Service, so
// implementations may be slow.
type SpeakerEmbedder interface {
	EmbeddingForSpeakers(speakers []string) ([]float32, error)
}
