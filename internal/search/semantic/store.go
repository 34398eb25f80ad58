package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	search "github.com/radassist/backend/internal/search"
)

// Store ranks scenarios against a normalized query vector. The local store
// holds the decompressed embedding matrix in memory; the Milvus store
// delegates to a remote collection.
type Store interface {
	Rank(ctx context.Context, queryVec []float32, opts search.Options) ([]search.Result, error)
}

type docMeta struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// LocalStore compares the query against every stored scenario embedding.
// Embeddings are precomputed normalized, so dot product is cosine.
type LocalStore struct {
	ids        []string
	embeddings [][]float32
	meta       map[string]docMeta
}

// LoadLocalStore reads scenario_embeddings.f16 (row-major fp16),
// scenario_ids.json and metadata.json from the model directory.
func LoadLocalStore(dir string, dim int) (*LocalStore, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "scenario_embeddings.f16"))
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario embeddings: %w", err)
	}

	embeddings, err := decodeMatrix(raw, dim)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scenario embeddings: %w", err)
	}
	for _, row := range embeddings {
		normalize(row)
	}

	idsData, err := os.ReadFile(filepath.Join(dir, "scenario_ids.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario ids: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(idsData, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse scenario ids: %w", err)
	}
	if len(ids) != len(embeddings) {
		return nil, fmt.Errorf("embedding store corrupt: %d ids, %d embeddings", len(ids), len(embeddings))
	}

	metaData, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding metadata: %w", err)
	}
	var meta map[string]docMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse embedding metadata: %w", err)
	}

	return &LocalStore{ids: ids, embeddings: embeddings, meta: meta}, nil
}

func (s *LocalStore) Rank(_ context.Context, queryVec []float32, opts search.Options) ([]search.Result, error) {
	var results []search.Result
	for i, emb := range s.embeddings {
		score := dot(queryVec, emb)
		if score >= opts.MinScore {
			id := s.ids[i]
			m := s.meta[id]
			results = append(results, search.Result{
				ID:    id,
				Score: score,
				Title: m.Title,
				URL:   m.URL,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}
