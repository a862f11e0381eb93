package phonemizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config, enc *fakeEncoder, dur *fakeDurations, emb SpeakerEmbedder) *Service {
	t.Helper()
	s, err := NewService(newFakeG2P(), enc, dur, emb, cfg, testVocabulary(), nil)
	require.NoError(t, err)
	return s
}

func TestPhonemizePhrase(t *testing.T) {
	enc := &fakeEncoder{}
	dur := &fakeDurations{durations: []float32{10, 40, 50}}
	s := newTestService(t, testConfig(), enc, dur, nil)
	tl := linearTimeline{msPerTick: 1}
	notes := []Note{{Position: 1000, Duration: 500, Tone: 60, Lyric: "sa"}}

	result, err := s.PhonemizePhrase(context.Background(), notes, tl)
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 1, 2}, enc.lastTokens)
	assert.Equal(t, []int64{2, 1}, enc.lastWordDiv)
	assert.Equal(t, []int64{50, 50}, enc.lastWordDur)
	assert.Equal(t, []int64{60, 60, 60}, dur.lastMidi)
	assert.Nil(t, dur.lastEmbed, "single speaker must not request an embedding")

	assert.Equal(t, PhraseResult{1000: {
		{Symbol: "s", TickOffset: -400},
		{Symbol: "a", TickOffset: 0},
	}}, result)
}

func TestPhonemizePhraseDurationCountMismatch(t *testing.T) {
	enc := &fakeEncoder{}
	dur := &fakeDurations{durations: []float32{10, 40}}
	s := newTestService(t, testConfig(), enc, dur, nil)

	_, err := s.PhonemizePhrase(context.Background(), []Note{{Position: 0, Duration: 480, Tone: 60, Lyric: "sa"}}, linearTimeline{msPerTick: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration predictor returned")
}

func TestPhonemizePhraseCancelled(t *testing.T) {
	enc := &fakeEncoder{}
	dur := &fakeDurations{durations: []float32{10, 40, 50}}
	s := newTestService(t, testConfig(), enc, dur, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.PhonemizePhrase(ctx, []Note{{Position: 0, Duration: 480, Tone: 60, Lyric: "sa"}}, linearTimeline{msPerTick: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, enc.lastTokens, "encoder must not run after cancellation")
}

func TestSpeakerEmbeddingCache(t *testing.T) {
	cfg := testConfig()
	cfg.Speakers = []string{"alpha", "beta"}
	cfg.Subbanks = []Subbank{{Color: "", Suffix: "alpha"}}
	enc := &fakeEncoder{}
	dur := &fakeDurations{durations: []float32{10, 40, 50}}
	emb := &fakeEmbedder{dim: 8}
	s := newTestService(t, cfg, enc, dur, emb)
	tl := linearTimeline{msPerTick: 1}
	notes := []Note{{Position: 1000, Duration: 500, Tone: 60, Lyric: "sa"}}

	_, err := s.PhonemizePhrase(context.Background(), notes, tl)
	require.NoError(t, err)
	require.Len(t, dur.lastEmbed, 3*emb.dim)

	_, err = s.PhonemizePhrase(context.Background(), notes, tl)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls, "same suffix sequence must hit the cache")

	s.ResetSpeakerCache()
	_, err = s.PhonemizePhrase(context.Background(), notes, tl)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestNewServiceValidation(t *testing.T) {
	cfg := testConfig()
	enc := &fakeEncoder{}
	dur := &fakeDurations{}

	_, err := NewService(nil, enc, dur, nil, cfg, testVocabulary(), nil)
	assert.Error(t, err)

	_, err = NewService(newFakeG2P(), nil, dur, nil, cfg, testVocabulary(), nil)
	assert.Error(t, err)

	multi := cfg
	multi.Speakers = []string{"alpha", "beta"}
	_, err = NewService(newFakeG2P(), enc, dur, nil, multi, testVocabulary(), nil)
	assert.Error(t, err, "multi-speaker without embedder must fail")

	pause := cfg
	pause.PauseSymbol = "AP"
	_, err = NewService(newFakeG2P(), enc, dur, nil, pause, testVocabulary(), nil)
	assert.Error(t, err, "pause symbol outside the vocabulary must fail")
}
