package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and splits on punctuation", func(t *testing.T) {
		tokens := Tokenize("Acute Cholecystitis, right-upper-quadrant PAIN")
		assert.Equal(t, []string{"acute", "cholecystitis", "right", "upper", "quadrant", "pain"}, tokens)
	})

	t.Run("drops stopwords", func(t *testing.T) {
		tokens := Tokenize("pain in the knee with swelling")
		assert.NotContains(t, tokens, "the")
		assert.NotContains(t, tokens, "in")
		assert.Contains(t, tokens, "knee")
	})

	t.Run("drops short tokens except protected abbreviations", func(t *testing.T) {
		tokens := Tokenize("ct of pe vs xx")
		assert.Contains(t, tokens, "ct")
		assert.Contains(t, tokens, "pe")
		assert.NotContains(t, tokens, "xx")
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("  ,,  "))
	})
}

func TestStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"appendicitis", "appendic"},
		{"fibrosis", "fibr"},
		{"appendectomy", "append"},
		{"angiography", "angi"},
		{"colonoscopy", "colon"},
		{"evaluation", "evalu"},
		{"screening", "screen"},
		{"impingement", "impinge"},
		{"degenerative", "degenerat"},
		{"cancerous", "cancer"},
		{"femoral", "femor"},
		{"hepatic", "hepat"},
		{"fractured", "fractur"},
		{"bilaterally", "bilateral"},
		{"stones", "stone"},
		// stemmed form would fall under three characters: unchanged
		{"its", "its"},
		{"ms", "ms"},
		// no matching suffix
		{"pain", "pain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.word), "word %q", tt.word)
	}
}

// One rule per word: a word carrying several stemmable suffixes is stripped
// only once, by the first matching rule in order.
func TestStem_AppliesSingleRule(t *testing.T) {
	// "calcifications": "ation" wins over the trailing "s" rule only if it
	// matches first; the suffix list is ordered and "ation" does not match
	// the trailing "s" form. "s" matches, leaving "calcification".
	assert.Equal(t, "calcification", Stem("calcifications"))
	// the result still carries "ation"; a second pass would strip it, which
	// must not happen inside one Stem call
	assert.NotEqual(t, "calcific", Stem("calcifications"))
}

func TestExpandAndStem_PreservesDuplicates(t *testing.T) {
	terms := ExpandAndStem([]string{"knee", "knee", "pain"})

	count := 0
	for _, term := range terms {
		if term == "knee" {
			count++
		}
	}
	assert.Equal(t, 2, count, "repeated tokens must survive for term-frequency counts")
}

func TestExpandAndStem_AddsSynonyms(t *testing.T) {
	terms := ExpandAndStem([]string{"stroke"})
	assert.Contains(t, terms, "cva")
}
