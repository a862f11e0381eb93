// Package lexicon provides a dictionary-backed grapheme-to-phoneme resolver
// for singing lyrics. Dictionaries are YAML files declaring the symbol set
// with per-symbol types and the grapheme entries that map onto it.
package lexicon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SymbolTypeVowel marks symbols that open a new syllable slot.
const SymbolTypeVowel = "vowel"

type dictFile struct {
	Symbols []symbolDecl `yaml:"symbols"`
	Entries []entryDecl  `yaml:"entries"`
}

type symbolDecl struct {
	Symbol string `yaml:"symbol"`
	Type   string `yaml:"type"`
}

type entryDecl struct {
	Grapheme string   `yaml:"grapheme"`
	Phonemes []string `yaml:"phonemes"`
}

// Dictionary maps graphemes to phoneme sequences. It implements
// phonemizer.G2P.
type Dictionary struct {
	entries map[string][]string
	types   map[string]string
}

// Load reads a YAML dictionary. Every entry phoneme must be a declared
// symbol; a stray phoneme means the dictionary does not match the singer's
// symbol set and is an error.
func Load(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var file dictFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	if len(file.Symbols) == 0 {
		return nil, fmt.Errorf("dictionary declares no symbols")
	}
	d := &Dictionary{
		entries: make(map[string][]string, len(file.Entries)),
		types:   make(map[string]string, len(file.Symbols)),
	}
	for _, s := range file.Symbols {
		if s.Symbol == "" {
			return nil, fmt.Errorf("dictionary declares an empty symbol")
		}
		d.types[s.Symbol] = s.Type
	}
	for _, e := range file.Entries {
		if e.Grapheme == "" || len(e.Phonemes) == 0 {
			return nil, fmt.Errorf("incomplete entry %q", e.Grapheme)
		}
		for _, ph := range e.Phonemes {
			if _, ok := d.types[ph]; !ok {
				return nil, fmt.Errorf("entry %q uses undeclared symbol %q", e.Grapheme, ph)
			}
		}
		if _, ok := d.entries[e.Grapheme]; !ok {
			d.entries[e.Grapheme] = e.Phonemes
		}
	}
	return d, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return d, nil
}

// Query returns the phoneme sequence for a lyric, or nil when the lyric has
// no entry.
func (d *Dictionary) Query(lyric string) []string {
	phonemes, ok := d.entries[lyric]
	if !ok {
		return nil
	}
	return append([]string(nil), phonemes...)
}

// IsValidSymbol reports whether the symbol is declared in the dictionary.
func (d *Dictionary) IsValidSymbol(symbol string) bool {
	_, ok := d.types[symbol]
	return ok
}

// IsVowel reports whether the symbol is declared with the vowel type.
func (d *Dictionary) IsVowel(symbol string) bool {
	return d.types[symbol] == SymbolTypeVowel
}

// Symbols returns all declared symbols.
func (d *Dictionary) Symbols() []string {
	out := make([]string, 0, len(d.types))
	for s := range d.types {
		out = append(out, s)
	}
	return out
}
