package semantic

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/pkg/logger"
	"github.com/radassist/backend/pkg/retry"
)

// MilvusStore serves scenario embeddings from a remote Milvus collection.
// Used instead of the local fp16 matrix when an endpoint is configured.
type MilvusStore struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

func NewMilvusStore(ctx context.Context, endpoint, collectionName string, vectorDim int) (*MilvusStore, error) {
	c, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (client.Client, error) {
		return client.NewGrpcClient(ctx, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	has, err := c.HasCollection(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		return nil, fmt.Errorf("milvus collection %q does not exist", collectionName)
	}

	if err := c.LoadCollection(ctx, collectionName, false); err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Milvus embedding store initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &MilvusStore{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (s *MilvusStore) Close() error {
	return s.client.Close()
}

func (s *MilvusStore) Rank(ctx context.Context, queryVec []float32, opts search.Options) ([]search.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := s.client.Search(
		ctx,
		s.collectionName,
		[]string{},
		"",
		[]string{"scenario_id", "title", "url"},
		[]entity.Vector{entity.FloatVector(queryVec)},
		"embedding",
		entity.IP,
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	results := make([]search.Result, 0)
	for _, sr := range searchResult {
		rows, err := resultsFromFields(sr.Fields, sr.Scores, sr.ResultCount, opts.MinScore)
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}

	return results, nil
}

// resultsFromFields decodes one search result set. Schema drift in the
// collection (missing or retyped columns) comes back as an error, never a
// panic, so the caller can fall back to lexical search.
func resultsFromFields(fields client.ResultSet, scores []float32, count int, minScore float64) ([]search.Result, error) {
	idCol := fields.GetColumn("scenario_id")
	titleCol := fields.GetColumn("title")
	urlCol := fields.GetColumn("url")
	if idCol == nil || titleCol == nil || urlCol == nil {
		return nil, fmt.Errorf("milvus result is missing expected output fields")
	}

	var results []search.Result
	for i := 0; i < count; i++ {
		id, err := idCol.Get(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario_id: %w", err)
		}
		title, err := titleCol.Get(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read title: %w", err)
		}
		url, err := urlCol.Get(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read url: %w", err)
		}

		idStr, ok := id.(string)
		if !ok {
			return nil, fmt.Errorf("scenario_id has type %T, want string", id)
		}
		titleStr, ok := title.(string)
		if !ok {
			return nil, fmt.Errorf("title has type %T, want string", title)
		}
		urlStr, ok := url.(string)
		if !ok {
			return nil, fmt.Errorf("url has type %T, want string", url)
		}

		score := float64(scores[i])
		if score < minScore {
			continue
		}

		results = append(results, search.Result{
			ID:    idStr,
			Score: score,
			Title: titleStr,
			URL:   urlStr,
		})
	}

	return results, nil
}
