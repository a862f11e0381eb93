package phonemizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// Service orchestrates one singer's phonemization: symbol resolution,
// syllable segmentation, phrase assembly, the two model calls and the
// alignment back onto the song timeline. Phrases are processed
// independently, so a Service is safe for concurrent use; the only shared
// mutable state is the speaker-embedding cache.
type Service struct {
	g2p       G2P
	encoder   LinguisticEncoder
	durations DurationPredictor
	embedder  SpeakerEmbedder
	cfg       Config
	vocab     *Vocabulary
	logger    *log.Logger

	embedMu    sync.RWMutex
	embedCache map[string][]float32
}

// NewService constructs a service for one singer. embedder may be nil for
// single-speaker singers.
func NewService(g2p G2P, encoder LinguisticEncoder, durations DurationPredictor, embedder SpeakerEmbedder, cfg Config, vocab *Vocabulary, logger *log.Logger) (*Service, error) {
	if g2p == nil {
		return nil, errors.New("g2p is required")
	}
	if encoder == nil || durations == nil {
		return nil, errors.New("both models are required")
	}
	if vocab == nil {
		return nil, errors.New("vocabulary is required")
	}
	cfg.ApplyDefaults()
	if cfg.MultiSpeaker() && embedder == nil {
		return nil, errors.New("multi-speaker singer needs a speaker embedder")
	}
	if !vocab.Contains(cfg.PauseSymbol) {
		return nil, fmt.Errorf("pause symbol %q not in vocabulary", cfg.PauseSymbol)
	}
	return &Service{
		g2p:        g2p,
		encoder:    encoder,
		durations:  durations,
		embedder:   embedder,
		cfg:        cfg,
		vocab:      vocab,
		logger:     logger,
		embedCache: make(map[string][]float32),
	}, nil
}

// Config returns the singer configuration in use.
func (s *Service) Config() Config { return s.cfg }

// PhonemizePhrase converts one phrase of notes into per-note phoneme events
// with tick offsets. The context is checked before each model call; a
// cancelled phrase aborts before the next call rather than mid-alignment.
func (s *Service) PhonemizePhrase(ctx context.Context, notes []Note, tl Timeline) (PhraseResult, error) {
	plan, err := assemblePhrase(notes, s.g2p, s.cfg, s.vocab, tl)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := s.encoder.Encode(ctx, plan.tokens, plan.wordDiv, plan.wordDur)
	if err != nil {
		return nil, fmt.Errorf("linguistic encoder: %w", err)
	}

	var spkEmbed []float32
	if s.cfg.MultiSpeaker() {
		if spkEmbed, err = s.speakerEmbedding(plan.speakers); err != nil {
			return nil, fmt.Errorf("speaker embedding: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	durations, err := s.durations.Predict(ctx, enc, plan.phMidi, spkEmbed)
	if err != nil {
		return nil, fmt.Errorf("duration predictor: %w", err)
	}
	if len(durations) != len(plan.tokens) {
		return nil, fmt.Errorf("duration predictor returned %d values for %d symbols", len(durations), len(plan.tokens))
	}

	positions, err := alignPhrase(plan.anchors, durations, s.cfg.FrameMs())
	if err != nil {
		return nil, fmt.Errorf("align phrase at tick %d: %w", notes[0].Position, err)
	}
	result := emitResult(notes, plan, positions, tl)
	s.logf("phrase at tick %d: %d notes, %d phonemes", notes[0].Position, len(notes), len(plan.symbols))
	return result, nil
}

// speakerEmbedding returns the cached embedding for an ordered suffix
// sequence, asking the embedder on first use. The cache is phrase
// independent and lives until the singer changes.
func (s *Service) speakerEmbedding(speakers []string) ([]float32, error) {
	key := strings.Join(speakers, "|")
	s.embedMu.RLock()
	cached, ok := s.embedCache[key]
	s.embedMu.RUnlock()
	if ok {
		return cached, nil
	}
	embed, err := s.embedder.EmbeddingForSpeakers(speakers)
	if err != nil {
		return nil, err
	}
	s.embedMu.Lock()
	s.embedCache[key] = embed
	s.embedMu.Unlock()
	return embed, nil
}

// ResetSpeakerCache clears the embedding cache. Call when the singer's
// voice configuration is replaced.
func (s *Service) ResetSpeakerCache() {
	s.embedMu.Lock()
	s.embedCache = make(map[string][]float32)
	s.embedMu.Unlock()
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
