package semantic

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Embedder turns a query string into a normalized dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// LocalModel is the distilled embedding model shipped alongside the scenario
// index. Per-token hidden states are rows of the token embedding matrix; the
// query vector is the mean over non-padding tokens, L2-normalized. The matrix
// is stored fp16 and decompressed once at load.
type LocalModel struct {
	tokenizer  *Tokenizer
	embeddings [][]float32
	dim        int
	maxTokens  int
}

// LoadLocalModel reads vocab.txt and token_embeddings.f16 from the model
// directory.
func LoadLocalModel(dir string, dim int) (*LocalModel, error) {
	tokenizer, err := LoadTokenizer(filepath.Join(dir, "vocab.txt"))
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, "token_embeddings.f16"))
	if err != nil {
		return nil, fmt.Errorf("failed to read token embeddings: %w", err)
	}

	embeddings, err := decodeMatrix(raw, dim)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token embeddings: %w", err)
	}

	if len(embeddings) < len(tokenizer.vocab) {
		return nil, fmt.Errorf("embedding matrix has %d rows for %d vocab entries", len(embeddings), len(tokenizer.vocab))
	}

	return &LocalModel{
		tokenizer:  tokenizer,
		embeddings: embeddings,
		dim:        dim,
		maxTokens:  128,
	}, nil
}

func (m *LocalModel) Dimension() int {
	return m.dim
}

func (m *LocalModel) Embed(_ context.Context, text string) ([]float32, error) {
	ids := m.tokenizer.Encode(text)
	if len(ids) == 0 {
		return nil, fmt.Errorf("query produced no tokens")
	}
	if len(ids) > m.maxTokens {
		ids = ids[:m.maxTokens]
	}

	pooled := make([]float64, m.dim)
	count := 0
	for _, id := range ids {
		if id == m.tokenizer.padID || id >= len(m.embeddings) {
			continue
		}
		row := m.embeddings[id]
		for i, v := range row {
			pooled[i] += float64(v)
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("query produced no embeddable tokens")
	}

	vec := make([]float32, m.dim)
	var sumSq float64
	for i := range pooled {
		mean := pooled[i] / float64(count)
		vec[i] = float32(mean)
		sumSq += mean * mean
	}

	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return nil, fmt.Errorf("query embedding has zero norm")
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}

// normalize L2-normalizes v in place; zero vectors are left untouched.
func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// dot assumes both vectors are already normalized, making this cosine
// similarity.
func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
