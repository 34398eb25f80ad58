package lexical

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/radassist/backend/pkg/logger"
)

// DocMeta is the per-document display metadata carried by the index.
type DocMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// IndexFile is the on-disk TF-IDF index produced by cmd/indexer.
// Vectors are sparse: term-index -> weight per document.
type IndexFile struct {
	Vocabulary []string             `json:"vocabulary"`
	IDF        []float64            `json:"idf"`
	Vectors    []map[string]float64 `json:"vectors"`
	Docs       []DocMeta            `json:"docs"`
}

// Index is the loaded, query-ready form. Read-only after load.
type Index struct {
	vocab   map[string]int
	idf     []float64
	vectors []map[int]float64
	norms   []float64
	docs    []DocMeta
}

func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tfidf index: %w", err)
	}

	var file IndexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tfidf index: %w", err)
	}

	return NewIndex(&file)
}

func NewIndex(file *IndexFile) (*Index, error) {
	if len(file.Vocabulary) != len(file.IDF) {
		return nil, fmt.Errorf("tfidf index corrupt: %d vocabulary terms, %d idf weights", len(file.Vocabulary), len(file.IDF))
	}
	if len(file.Vectors) != len(file.Docs) {
		return nil, fmt.Errorf("tfidf index corrupt: %d vectors, %d docs", len(file.Vectors), len(file.Docs))
	}

	idx := &Index{
		vocab:   make(map[string]int, len(file.Vocabulary)),
		idf:     file.IDF,
		vectors: make([]map[int]float64, len(file.Vectors)),
		norms:   make([]float64, len(file.Vectors)),
		docs:    file.Docs,
	}

	for i, term := range file.Vocabulary {
		idx.vocab[term] = i
	}

	for d, sparse := range file.Vectors {
		vec := make(map[int]float64, len(sparse))
		var sumSq float64
		for key, weight := range sparse {
			termIdx, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("tfidf index corrupt: bad term index %q in doc %d", key, d)
			}
			vec[termIdx] = weight
			sumSq += weight * weight
		}
		idx.vectors[d] = vec
		idx.norms[d] = math.Sqrt(sumSq)
	}

	logger.Info("TF-IDF index loaded",
		zap.Int("documents", len(idx.docs)),
		zap.Int("vocabulary", len(idx.vocab)),
	)

	return idx, nil
}

func (idx *Index) DocumentCount() int {
	return len(idx.docs)
}
