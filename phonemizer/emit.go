package phonemizer

// emitResult redistributes the aligned symbol positions back to the source
// notes. Vowel-extension continuations emit nothing; their symbols already
// live in the preceding note's timeline. Empty labels left over from pause
// insertion are dropped.
func emitResult(notes []Note, plan *phrasePlan, positions []float64, tl Timeline) PhraseResult {
	out := make(PhraseResult, len(notes))
	for i, note := range notes {
		if i > 0 && IsVowelExtension(note.Lyric) {
			continue
		}
		span := plan.spans[i]
		noteMs := tl.TickToMs(note.Position)
		events := make([]Phoneme, 0, span[1]-span[0])
		for j := span[0]; j < span[1]; j++ {
			if plan.symbols[j].Label == "" {
				continue
			}
			events = append(events, Phoneme{
				Symbol:     plan.symbols[j].Label,
				TickOffset: tl.TicksBetweenMs(noteMs, positions[j]),
			})
		}
		out[note.Position] = events
	}
	return out
}
