// Package speaker loads singer voice embeddings and assembles the
// per-symbol embedding sequence the duration predictor consumes.
package speaker

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// Bank holds one embedding vector per speaker suffix. All vectors share the
// same dimension. It implements phonemizer.SpeakerEmbedder.
type Bank struct {
	dim      int
	fallback string
	vectors  map[string][]float32
}

// LoadBank reads <name>.emb files from dir, raw little-endian float32. The
// first name is the fallback used for the empty (default voice) suffix.
func LoadBank(dir string, names []string) (*Bank, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no speaker names given")
	}
	b := &Bank{fallback: names[0], vectors: make(map[string][]float32, len(names))}
	for _, name := range names {
		path := filepath.Join(dir, name+".emb")
		vec, err := readEmbedding(path)
		if err != nil {
			return nil, err
		}
		if b.dim == 0 {
			b.dim = len(vec)
		} else if len(vec) != b.dim {
			return nil, fmt.Errorf("embedding %s: dimension %d, want %d", path, len(vec), b.dim)
		}
		b.vectors[name] = vec
	}
	return b, nil
}

func readEmbedding(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embedding: %w", err)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding %s: length %d is not a float32 sequence", path, len(data))
	}
	vec := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("embedding %s: %w", path, err)
	}
	return vec, nil
}

// Dim returns the embedding dimension.
func (b *Bank) Dim() int { return b.dim }

// EmbeddingForSpeakers concatenates one vector per suffix, in order. An
// empty suffix selects the bank's first speaker; an unknown suffix is a
// configuration error.
func (b *Bank) EmbeddingForSpeakers(speakers []string) ([]float32, error) {
	out := make([]float32, 0, len(speakers)*b.dim)
	for i, name := range speakers {
		if name == "" {
			name = b.fallback
		}
		vec, ok := b.vectors[name]
		if !ok {
			return nil, fmt.Errorf("symbol %d: unknown speaker suffix %q", i, name)
		}
		out = append(out, vec...)
	}
	return out, nil
}
