package phonemizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// resolveSymbols produces the ordered phonetic symbols for one note.
// Resolution priority: phonetic hint, G2P on the lyric as given, G2P on the
// lowercase-normalized lyric, the lyric itself read as a hint, and finally a
// single pause symbol. Invalid hint tokens are dropped, not errored.
func resolveSymbols(note Note, g2p G2P, pause string) []string {
	if hint := strings.TrimSpace(note.PhoneticHint); hint != "" {
		if symbols := validFields(hint, g2p); len(symbols) > 0 {
			return symbols
		}
	}
	if symbols := g2p.Query(note.Lyric); len(symbols) > 0 {
		return symbols
	}
	lowered := strings.ToLower(norm.NFKC.String(note.Lyric))
	if symbols := g2p.Query(lowered); len(symbols) > 0 {
		return symbols
	}
	if symbols := validFields(note.Lyric, g2p); len(symbols) > 0 {
		return symbols
	}
	return []string{pause}
}

func validFields(s string, g2p G2P) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if g2p.IsValidSymbol(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// ResolveNote resolves a note's symbols and assigns each one the speaker
// suffix selected by the note's voice-color attributes and tone.
func ResolveNote(note Note, g2p G2P, cfg Config) []Symbol {
	labels := resolveSymbols(note, g2p, cfg.PauseSymbol)
	symbols := make([]Symbol, len(labels))
	for i, label := range labels {
		symbols[i] = Symbol{
			Label:   label,
			Speaker: cfg.SuffixFor(note.attrColor(i), note.Tone),
		}
	}
	return symbols
}
