package lexical

import (
	"strings"
	"unicode"

	"github.com/radassist/backend/internal/search/synonyms"
)

// suffixRules is the ordered stemming rule list. The first matching rule is
// applied and no further rules are tried, so a word is stemmed at most once.
var suffixRules = []string{
	"itis", "osis", "ectomy", "ography", "oscopy",
	"ation", "ing", "ment", "ive", "ous",
	"al", "ic", "ed", "ly", "s",
}

// Tokenize lowercases the text, splits it into alphanumeric runs, drops
// stopwords and short tokens. Protected clinical abbreviations are exempt
// from the length filter.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if synonyms.Stopwords[tok] {
			return
		}
		if len(tok) < 3 && !synonyms.ProtectedAbbreviations[tok] {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// Stem strips at most one suffix per word, first matching rule wins. The
// stemmed form must stay at least three characters or the word is returned
// unchanged.
func Stem(word string) string {
	for _, suffix := range suffixRules {
		if strings.HasSuffix(word, suffix) {
			stemmed := word[:len(word)-len(suffix)]
			if len(stemmed) >= 3 {
				return stemmed
			}
			return word
		}
	}
	return word
}

// ExpandAndStem applies the synonym table to each token and stems the full
// set. Duplicates are preserved so downstream term-frequency counts see
// repeated terms. Synonym expansions containing spaces contribute each of
// their words.
func ExpandAndStem(tokens []string) []string {
	var out []string

	for _, tok := range tokens {
		out = append(out, Stem(tok))
		for _, syn := range synonyms.Expand(tok) {
			for _, w := range strings.Fields(syn) {
				out = append(out, Stem(w))
			}
		}
	}

	return out
}
