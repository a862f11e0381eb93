package phonemizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subbank selects a speaker suffix for notes rendered with a given voice
// color inside a tone range.
type Subbank struct {
	Color      string   `yaml:"color"`
	Suffix     string   `yaml:"suffix"`
	ToneRanges []string `yaml:"tone_ranges"`

	ranges []toneRange
}

type toneRange struct {
	lo, hi int
}

func (b Subbank) containsTone(tone int) bool {
	if len(b.ranges) == 0 {
		return true
	}
	for _, r := range b.ranges {
		if tone >= r.lo && tone <= r.hi {
			return true
		}
	}
	return false
}

// Config aggregates one singer's settings, loaded from the singer's YAML
// configuration file. Model and phoneme-list paths are resolved relative to
// that file.
type Config struct {
	Phonemes    string    `yaml:"phonemes"`
	Linguistic  string    `yaml:"linguistic"`
	Dur         string    `yaml:"dur"`
	SampleRate  int       `yaml:"sample_rate"`
	HopSize     int       `yaml:"hop_size"`
	HeadMs      float64   `yaml:"head_ms"`
	PauseSymbol string    `yaml:"pause_symbol"`
	Speakers    []string  `yaml:"speakers"`
	Subbanks    []Subbank `yaml:"subbanks"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Phonemes == "" {
		c.Phonemes = "phonemes.txt"
	}
	if c.Linguistic == "" {
		c.Linguistic = "linguistic.onnx"
	}
	if c.Dur == "" {
		c.Dur = "dur.onnx"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.HopSize <= 0 {
		c.HopSize = 512
	}
	if c.HeadMs <= 0 {
		c.HeadMs = 500
	}
	if c.PauseSymbol == "" {
		c.PauseSymbol = "SP"
	}
}

// FrameMs returns the duration of one model frame in milliseconds.
func (c Config) FrameMs() float64 {
	return 1000 * float64(c.HopSize) / float64(c.SampleRate)
}

// MultiSpeaker reports whether the singer declares more than one speaker, in
// which case the duration predictor expects a speaker embedding.
func (c Config) MultiSpeaker() bool {
	return len(c.Speakers) > 1
}

// SuffixFor returns the speaker suffix of the first subbank matching the
// requested voice color and tone, or "" for the default voice.
func (c Config) SuffixFor(color string, tone int) string {
	for _, b := range c.Subbanks {
		if b.Color == color && b.containsTone(tone) {
			return b.Suffix
		}
	}
	return ""
}

// LoadConfig reads a singer configuration, resolves its file references and
// verifies that the referenced model files exist.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read singer config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode singer config %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	dir := filepath.Dir(path)
	cfg.Phonemes = resolvePath(dir, cfg.Phonemes)
	cfg.Linguistic = resolvePath(dir, cfg.Linguistic)
	cfg.Dur = resolvePath(dir, cfg.Dur)
	for _, p := range []string{cfg.Phonemes, cfg.Linguistic, cfg.Dur} {
		if _, err := os.Stat(p); err != nil {
			return cfg, fmt.Errorf("singer file missing: %w", err)
		}
	}

	for i := range cfg.Subbanks {
		ranges, err := parseToneRanges(cfg.Subbanks[i].ToneRanges)
		if err != nil {
			return cfg, fmt.Errorf("subbank %q: %w", cfg.Subbanks[i].Suffix, err)
		}
		cfg.Subbanks[i].ranges = ranges
	}
	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func parseToneRanges(specs []string) ([]toneRange, error) {
	ranges := make([]toneRange, 0, len(specs))
	for _, spec := range specs {
		r, err := parseToneRange(spec)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseToneRange(spec string) (toneRange, error) {
	parts := strings.SplitN(spec, "-", 2)
	lo, err := parseToneName(parts[0])
	if err != nil {
		return toneRange{}, err
	}
	hi := lo
	if len(parts) == 2 {
		if hi, err = parseToneName(parts[1]); err != nil {
			return toneRange{}, err
		}
	}
	if hi < lo {
		return toneRange{}, fmt.Errorf("tone range %q: end below start", spec)
	}
	return toneRange{lo: lo, hi: hi}, nil
}

var toneSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// parseToneName converts a note name such as "C4" or "A#3" to a MIDI note
// number (C4 = 60).
func parseToneName(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("empty tone name")
	}
	semi, ok := toneSemitones[name[0]]
	if !ok {
		return 0, fmt.Errorf("bad tone name %q", name)
	}
	rest := name[1:]
	for len(rest) > 0 {
		if rest[0] == '#' {
			semi++
		} else if rest[0] == 'b' {
			semi--
		} else {
			break
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("bad tone name %q", name)
	}
	return (octave+1)*12 + semi, nil
}
