// Package lexical implements TF-IDF search over the precomputed scenario
// index: tokenize, synonym-expand, stem, score by sparse cosine similarity.
// Stateless per call apart from the read-only index; cheap enough to run on
// every debounced keystroke.
package lexical

import (
	"context"
	"math"
	"sort"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/search/expand"
)

type Searcher struct {
	index    *Index
	expander *expand.Expander
}

func NewSearcher(index *Index, expander *expand.Expander) *Searcher {
	return &Searcher{index: index, expander: expander}
}

func (s *Searcher) Search(ctx context.Context, query string, opts search.Options) []search.Result {
	expanded := s.expander.ExpandWithOntology(ctx, query)

	tokens := Tokenize(expanded)
	if len(tokens) == 0 {
		return nil
	}
	terms := ExpandAndStem(tokens)

	queryVec, queryNorm := s.buildQueryVector(terms)
	if len(queryVec) == 0 {
		return nil
	}

	var results []search.Result
	for d, docVec := range s.index.vectors {
		score := cosine(queryVec, queryNorm, docVec, s.index.norms[d])
		if score >= opts.MinScore {
			meta := s.index.docs[d]
			results = append(results, search.Result{
				ID:    meta.ID,
				Score: score,
				Title: meta.Title,
				URL:   meta.URL,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results
}

// buildQueryVector weights each in-vocabulary term by (1 + log tf) * idf.
// Out-of-vocabulary terms are dropped silently.
func (s *Searcher) buildQueryVector(terms []string) (map[int]float64, float64) {
	counts := make(map[int]int)
	for _, term := range terms {
		if idx, ok := s.index.vocab[term]; ok {
			counts[idx]++
		}
	}

	vec := make(map[int]float64, len(counts))
	var sumSq float64
	for idx, count := range counts {
		weight := (1 + math.Log(float64(count))) * s.index.idf[idx]
		vec[idx] = weight
		sumSq += weight * weight
	}

	return vec, math.Sqrt(sumSq)
}

// cosine computes similarity over shared sparse indices only.
func cosine(queryVec map[int]float64, queryNorm float64, docVec map[int]float64, docNorm float64) float64 {
	if queryNorm == 0 || docNorm == 0 {
		return 0
	}

	// iterate the smaller map
	small, large := queryVec, docVec
	if len(docVec) < len(queryVec) {
		small, large = docVec, queryVec
	}

	var dot float64
	for idx, w := range small {
		if dw, ok := large[idx]; ok {
			dot += w * dw
		}
	}

	return dot / (queryNorm * docNorm)
}
