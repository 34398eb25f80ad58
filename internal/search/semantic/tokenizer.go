package semantic

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

const (
	unkToken = "[UNK]"
	padToken = "[PAD]"
)

// Tokenizer is a WordPiece-style greedy longest-match subword tokenizer.
type Tokenizer struct {
	vocab map[string]int
	unkID int
	padID int
}

func LoadTokenizer(vocabPath string) (*Tokenizer, error) {
	file, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab: %w", err)
	}
	defer file.Close()

	vocab := make(map[string]int)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r\n")
		if token == "" {
			continue
		}
		vocab[token] = len(vocab)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}

	return NewTokenizer(vocab)
}

func NewTokenizer(vocab map[string]int) (*Tokenizer, error) {
	unkID, ok := vocab[unkToken]
	if !ok {
		return nil, fmt.Errorf("vocab missing %s token", unkToken)
	}
	padID, ok := vocab[padToken]
	if !ok {
		return nil, fmt.Errorf("vocab missing %s token", padToken)
	}

	return &Tokenizer{vocab: vocab, unkID: unkID, padID: padID}, nil
}

func (t *Tokenizer) PadID() int {
	return t.padID
}

// Encode splits text into words, then each word into the longest vocabulary
// subwords (continuation pieces are prefixed "##"). A word with no matching
// prefix becomes a single [UNK].
func (t *Tokenizer) Encode(text string) []int {
	var ids []int
	for _, word := range splitWords(strings.ToLower(text)) {
		ids = append(ids, t.encodeWord(word)...)
	}
	return ids
}

func (t *Tokenizer) encodeWord(word string) []int {
	var pieces []int
	runes := []rune(word)
	start := 0

	for start < len(runes) {
		end := len(runes)
		found := -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int{t.unkID}
		}
		pieces = append(pieces, found)
		start = end
	}

	return pieces
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
