package phonemizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSymbols(t *testing.T) {
	g2p := newFakeG2P()
	tests := []struct {
		name string
		note Note
		want []string
	}{
		{
			name: "hint wins over lyric",
			note: Note{Lyric: "sa", PhoneticHint: "k a"},
			want: []string{"k", "a"},
		},
		{
			name: "hint on empty lyric",
			note: Note{Lyric: "", PhoneticHint: "k a"},
			want: []string{"k", "a"},
		},
		{
			name: "invalid hint tokens dropped",
			note: Note{Lyric: "sa", PhoneticHint: "k xx a"},
			want: []string{"k", "a"},
		},
		{
			name: "all-invalid hint falls through to g2p",
			note: Note{Lyric: "sa", PhoneticHint: "xx yy"},
			want: []string{"s", "a"},
		},
		{
			name: "g2p on lyric",
			note: Note{Lyric: "sa"},
			want: []string{"s", "a"},
		},
		{
			name: "lowercase retry",
			note: Note{Lyric: "SA"},
			want: []string{"s", "a"},
		},
		{
			name: "lyric read as hint",
			note: Note{Lyric: "n a"},
			want: []string{"n", "a"},
		},
		{
			name: "pause fallback",
			note: Note{Lyric: "zzz"},
			want: []string{"SP"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveSymbols(tt.note, g2p, "SP")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNoteSpeakers(t *testing.T) {
	cfg := testConfig()
	cfg.Subbanks = []Subbank{
		{Color: "soft", Suffix: "soft", ranges: []toneRange{{lo: 48, hi: 71}}},
		{Color: "", Suffix: "power", ranges: []toneRange{{lo: 72, hi: 95}}},
	}
	g2p := newFakeG2P()

	t.Run("no color attribute means default voice", func(t *testing.T) {
		symbols := ResolveNote(Note{Lyric: "", PhoneticHint: "k a", Tone: 60}, g2p, cfg)
		require.Len(t, symbols, 2)
		assert.Equal(t, Symbol{Label: "k"}, symbols[0])
		assert.Equal(t, Symbol{Label: "a"}, symbols[1])
	})

	t.Run("color and tone select the subbank", func(t *testing.T) {
		note := Note{Lyric: "sa", Tone: 60, Attributes: []PhonemeAttribute{{Index: 1, VoiceColor: "soft"}}}
		symbols := ResolveNote(note, g2p, cfg)
		require.Len(t, symbols, 2)
		assert.Equal(t, "", symbols[0].Speaker)
		assert.Equal(t, "soft", symbols[1].Speaker)
	})

	t.Run("tone outside every range means default voice", func(t *testing.T) {
		note := Note{Lyric: "sa", Tone: 40, Attributes: []PhonemeAttribute{{Index: 0, VoiceColor: "soft"}}}
		symbols := ResolveNote(note, g2p, cfg)
		assert.Equal(t, "", symbols[0].Speaker)
	})

	t.Run("default color picks the uncolored subbank by tone", func(t *testing.T) {
		symbols := ResolveNote(Note{Lyric: "sa", Tone: 80}, g2p, cfg)
		assert.Equal(t, "power", symbols[0].Speaker)
	})
}

func TestResolveNoteIdempotent(t *testing.T) {
	g2p := newFakeG2P()
	cfg := testConfig()
	note := Note{Lyric: "sana", Tone: 62}
	first := ResolveNote(note, g2p, cfg)
	second := ResolveNote(note, g2p, cfg)
	assert.Equal(t, first, second)
}
