package phonemizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Vocabulary maps phonetic symbols to the token ids the linguistic encoder
// was trained with. The id of a symbol is its line index in the phoneme list
// file.
type Vocabulary struct {
	index   map[string]int64
	symbols []string
}

// LoadVocabulary reads a phoneme list: one symbol per line, blank lines and
// "#" comments skipped.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]int64)}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := v.index[line]; ok {
			return nil, fmt.Errorf("line %d: duplicate symbol %q", lineNum, line)
		}
		v.index[line] = int64(len(v.symbols))
		v.symbols = append(v.symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(v.symbols) == 0 {
		return nil, fmt.Errorf("phoneme list is empty")
	}
	return v, nil
}

// LoadVocabularyFile is a convenience wrapper that opens a file path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := LoadVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("phoneme list %s: %w", path, err)
	}
	return v, nil
}

// Size returns the number of known symbols.
func (v *Vocabulary) Size() int { return len(v.symbols) }

// Contains reports whether the symbol is in the vocabulary.
func (v *Vocabulary) Contains(symbol string) bool {
	_, ok := v.index[symbol]
	return ok
}

// Tokenize maps symbols to token ids. An unknown symbol means the vocabulary
// does not match the model and is an error, never silently skipped.
func (v *Vocabulary) Tokenize(symbols []string) ([]int64, error) {
	tokens := make([]int64, len(symbols))
	for i, s := range symbols {
		id, ok := v.index[s]
		if !ok {
			return nil, fmt.Errorf("symbol %q not in vocabulary", s)
		}
		tokens[i] = id
	}
	return tokens, nil
}
