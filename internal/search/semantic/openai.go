package semantic

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/radassist/backend/pkg/circuitbreaker"
	"github.com/radassist/backend/pkg/logger"
)

// EmbeddingCache memoizes query embeddings across requests. Nil disables
// caching.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, text string, embedding []float32) error
}

type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder embeds queries through the OpenAI embeddings API. Optional
// substitute for the local model; guarded by a circuit breaker so a degraded
// upstream makes the semantic tier unavailable rather than slow.
type OpenAIEmbedder struct {
	api     embeddingAPI
	cache   EmbeddingCache
	model   string
	dim     int
	breaker *circuitbreaker.CircuitBreaker
}

func NewOpenAIEmbedder(apiKey, model string, dim int, cache EmbeddingCache) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		api:   openai.NewClient(apiKey),
		cache: cache,
		model: model,
		dim:   dim,
		breaker: circuitbreaker.New("openai-embeddings", circuitbreaker.Config{
			Logger: logger.Log,
		}),
	}
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vec, ok, err := e.cache.GetEmbedding(ctx, text); err == nil && ok {
			return vec, nil
		}
	}

	var vec []float32

	err := e.breaker.Execute(ctx, func() error {
		resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      []string{text},
			Model:      openai.EmbeddingModel(e.model),
			Dimensions: e.dim,
		})
		if err != nil {
			return fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("embedding response is empty")
		}
		vec = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}

	normalize(vec)

	if e.cache != nil {
		if err := e.cache.SetEmbedding(ctx, text, vec); err != nil {
			logger.Debug("Failed to cache embedding", zap.Error(err))
		}
	}

	return vec, nil
}
