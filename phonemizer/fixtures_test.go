package phonemizer

import (
	"context"
	"math"
	"strings"
)

// fakeG2P is a tiny in-memory dictionary used across the package tests.
type fakeG2P struct {
	entries map[string][]string
	valid   map[string]bool
	vowels  map[string]bool
}

func newFakeG2P() *fakeG2P {
	g := &fakeG2P{
		entries: map[string][]string{
			"sa":   {"s", "a"},
			"ka":   {"k", "a"},
			"a":    {"a"},
			"sana": {"s", "a", "n", "a"},
			"saka": {"s", "a", "k", "a"},
		},
		valid:  make(map[string]bool),
		vowels: map[string]bool{"a": true},
	}
	for _, s := range []string{"SP", "s", "a", "k", "n"} {
		g.valid[s] = true
	}
	return g
}

func (g *fakeG2P) Query(lyric string) []string {
	phonemes, ok := g.entries[lyric]
	if !ok {
		return nil
	}
	return append([]string(nil), phonemes...)
}

func (g *fakeG2P) IsValidSymbol(symbol string) bool { return g.valid[symbol] }
func (g *fakeG2P) IsVowel(symbol string) bool       { return g.vowels[symbol] }

// linearTimeline maps ticks to milliseconds at a fixed rate.
type linearTimeline struct {
	msPerTick float64
}

func (t linearTimeline) TickToMs(tick int) float64 { return float64(tick) * t.msPerTick }
func (t linearTimeline) MsToTick(ms float64) int   { return int(math.Round(ms / t.msPerTick)) }
func (t linearTimeline) TicksBetweenMs(fromMs, toMs float64) int {
	return int(math.Round((toMs - fromMs) / t.msPerTick))
}

// testConfig keeps the frame math easy to follow: 10ms frames, 500ms head.
func testConfig() Config {
	cfg := Config{SampleRate: 1000, HopSize: 10}
	cfg.ApplyDefaults()
	return cfg
}

func testVocabulary() *Vocabulary {
	v, err := LoadVocabulary(strings.NewReader("SP\ns\na\nk\nn\n"))
	if err != nil {
		panic(err)
	}
	return v
}

type fakeEncoder struct {
	lastTokens  []int64
	lastWordDiv []int64
	lastWordDur []int64
	err         error
}

func (f *fakeEncoder) Encode(_ context.Context, tokens, wordDiv, wordDur []int64) (*Encoding, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastTokens = tokens
	f.lastWordDiv = wordDiv
	f.lastWordDur = wordDur
	const hidden = 4
	return &Encoding{
		Data:      make([]float32, len(tokens)*hidden),
		Shape:     []int64{1, int64(len(tokens)), hidden},
		Mask:      make([]bool, len(tokens)),
		MaskShape: []int64{1, int64(len(tokens))},
	}, nil
}

type fakeDurations struct {
	durations []float32
	lastMidi  []int64
	lastEmbed []float32
	err       error
}

func (f *fakeDurations) Predict(_ context.Context, _ *Encoding, phMidi []int64, spkEmbed []float32) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastMidi = phMidi
	f.lastEmbed = spkEmbed
	return f.durations, nil
}

type fakeEmbedder struct {
	dim   int
	calls int
}

func (f *fakeEmbedder) EmbeddingForSpeakers(speakers []string) ([]float32, error) {
	f.calls++
	return make([]float32, len(speakers)*f.dim), nil
}
