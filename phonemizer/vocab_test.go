package phonemizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary(strings.NewReader("# model symbols\nSP\nAP\n\na\nk\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, v.Size())
	assert.True(t, v.Contains("AP"))
	assert.False(t, v.Contains("#"))

	tokens, err := v.Tokenize([]string{"SP", "k", "a"})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 3, 2}, tokens)
}

func TestLoadVocabularyDuplicate(t *testing.T) {
	_, err := LoadVocabulary(strings.NewReader("a\nb\na\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadVocabularyEmpty(t *testing.T) {
	_, err := LoadVocabulary(strings.NewReader("\n# nothing\n"))
	require.Error(t, err)
}

func TestTokenizeUnknownSymbol(t *testing.T) {
	v, err := LoadVocabulary(strings.NewReader("SP\na\n"))
	require.NoError(t, err)
	_, err = v.Tokenize([]string{"a", "zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zz"`)
}
