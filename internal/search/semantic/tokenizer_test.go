package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenizer(t *testing.T) *Tokenizer {
	t.Helper()

	vocab := map[string]int{
		"[PAD]":   0,
		"[UNK]":   1,
		"head":    2,
		"##ache":  3,
		"##aches": 4,
		"knee":    5,
		"pain":    6,
		"mri":     7,
		"##s":     8,
	}

	tok, err := NewTokenizer(vocab)
	require.NoError(t, err)
	return tok
}

func TestEncode_GreedyLongestMatch(t *testing.T) {
	tok := testTokenizer(t)

	// "##aches" must win over "##ache" + "##s"
	assert.Equal(t, []int{2, 4}, tok.Encode("headaches"))
	assert.Equal(t, []int{2, 3}, tok.Encode("headache"))
}

func TestEncode_MultipleWords(t *testing.T) {
	tok := testTokenizer(t)

	assert.Equal(t, []int{5, 6}, tok.Encode("knee pain"))
}

func TestEncode_LowercasesAndSplitsPunctuation(t *testing.T) {
	tok := testTokenizer(t)

	assert.Equal(t, []int{7, 5}, tok.Encode("MRI, knee."))
}

func TestEncode_UnknownWordBecomesSingleUnk(t *testing.T) {
	tok := testTokenizer(t)

	// no vocabulary prefix matches: one [UNK] for the whole word
	assert.Equal(t, []int{1}, tok.Encode("xylophone"))
	// a word that starts matching but dead-ends also collapses to [UNK]
	assert.Equal(t, []int{1}, tok.Encode("kneex"))
}

func TestEncode_Empty(t *testing.T) {
	tok := testTokenizer(t)

	assert.Empty(t, tok.Encode(""))
	assert.Empty(t, tok.Encode("  ... "))
}

func TestNewTokenizer_RequiresSpecialTokens(t *testing.T) {
	_, err := NewTokenizer(map[string]int{"[PAD]": 0})
	assert.Error(t, err)

	_, err = NewTokenizer(map[string]int{"[UNK]": 0})
	assert.Error(t, err)
}
