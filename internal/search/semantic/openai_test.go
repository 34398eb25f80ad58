package semantic

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist/backend/pkg/circuitbreaker"
)

type fakeEmbeddingAPI struct {
	calls int
	vec   []float32
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(context.Context, openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls++
	return openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: f.vec}},
	}, nil
}

type fakeEmbedCache struct {
	store map[string][]float32
	sets  int
}

func (f *fakeEmbedCache) GetEmbedding(_ context.Context, text string) ([]float32, bool, error) {
	vec, ok := f.store[text]
	return vec, ok, nil
}

func (f *fakeEmbedCache) SetEmbedding(_ context.Context, text string, embedding []float32) error {
	f.store[text] = embedding
	f.sets++
	return nil
}

func testOpenAIEmbedder(api embeddingAPI, cache EmbeddingCache) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		api:     api,
		cache:   cache,
		model:   "text-embedding-3-small",
		dim:     3,
		breaker: circuitbreaker.New("openai-embeddings", circuitbreaker.Config{}),
	}
}

func TestOpenAIEmbedder_CachesEmbeddings(t *testing.T) {
	api := &fakeEmbeddingAPI{vec: []float32{3, 0, 4}}
	cache := &fakeEmbedCache{store: make(map[string][]float32)}
	e := testOpenAIEmbedder(api, cache)

	first, err := e.Embed(context.Background(), "acute stroke")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, 1, cache.sets)
	assert.InDelta(t, 0.6, first[0], 1e-6, "the cached vector is normalized")

	second, err := e.Embed(context.Background(), "acute stroke")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls, "repeat query must be served from the cache")
	assert.Equal(t, first, second)
}

func TestOpenAIEmbedder_NilCache(t *testing.T) {
	api := &fakeEmbeddingAPI{vec: []float32{0, 1, 0}}
	e := testOpenAIEmbedder(api, nil)

	vec, err := e.Embed(context.Background(), "knee pain")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 1, api.calls)
}
