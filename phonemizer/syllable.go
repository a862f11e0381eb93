package phonemizer

// wordSegments holds one word's symbols distributed over its notes. A word
// is its head note plus any "+"-prefixed continuation notes.
type wordSegments struct {
	// leading holds pre-vowel consonants. They have no anchor of their own
	// and are merged into the phrase's running group by the assembler.
	leading []Symbol
	// groups are anchored at the word's non-extension notes, one per vowel.
	groups []SyllableGroup
	// noteSymbols[i] is how many of the word's symbols note i owns.
	noteSymbols []int
}

func (w wordSegments) total() int {
	n := len(w.leading)
	for _, g := range w.groups {
		n += len(g.Symbols)
	}
	return n
}

// segmentWord resolves the word's head note and walks the symbols in order:
// each vowel advances to the next non-extension note and opens a group
// there; every symbol joins the currently open group. Vowel-extension notes
// are skipped entirely, and vowels beyond the available notes stay in the
// last opened group.
func segmentWord(notes []Note, g2p G2P, cfg Config) wordSegments {
	seg := wordSegments{noteSymbols: make([]int, len(notes))}
	if len(notes) == 0 {
		return seg
	}
	symbols := ResolveNote(notes[0], g2p, cfg)

	var anchorable []int
	for i, n := range notes {
		if i == 0 || !IsVowelExtension(n.Lyric) {
			anchorable = append(anchorable, i)
		}
	}

	open := -1 // index into anchorable; -1 means the leading fragment
	for _, sym := range symbols {
		if g2p.IsVowel(sym.Label) && open+1 < len(anchorable) {
			open++
			n := notes[anchorable[open]]
			seg.groups = append(seg.groups, SyllableGroup{Position: n.Position, Tone: n.Tone})
		}
		if open < 0 {
			seg.leading = append(seg.leading, sym)
			seg.noteSymbols[0]++
			continue
		}
		g := &seg.groups[len(seg.groups)-1]
		g.Symbols = append(g.Symbols, sym)
		seg.noteSymbols[anchorable[open]]++
	}
	return seg
}

// splitWords groups phrase notes into words: a new word starts at every note
// whose lyric is not a continuation marker.
func splitWords(notes []Note) [][]Note {
	var words [][]Note
	for i, n := range notes {
		if i == 0 || !IsContinuation(n.Lyric) {
			words = append(words, nil)
		}
		words[len(words)-1] = append(words[len(words)-1], n)
	}
	return words
}
