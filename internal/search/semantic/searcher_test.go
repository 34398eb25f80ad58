package semantic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/pkg/logger"
)

func init() {
	logger.InitNop()
}

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, nil
}

func (f *fakeEmbedder) Dimension() int {
	return len(f.vec)
}

type fakeStore struct {
	results []search.Result
}

func (f *fakeStore) Rank(context.Context, []float32, search.Options) ([]search.Result, error) {
	return f.results, nil
}

func TestSearcher_Lifecycle(t *testing.T) {
	s := NewSearcher(func(context.Context) (Embedder, Store, error) {
		return &fakeEmbedder{vec: []float32{1, 0}}, &fakeStore{
			results: []search.Result{{ID: "1", Score: 0.9, Title: "Acute stroke"}},
		}, nil
	})

	assert.Equal(t, StateUnavailable, s.State())
	assert.False(t, s.IsReady())

	_, err := s.Search(context.Background(), "stroke", search.Options{})
	assert.Error(t, err, "search before load must fail")

	done := s.StartLoad(context.Background())
	<-done

	require.True(t, s.IsReady())

	results, err := s.Search(context.Background(), "stroke", search.Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
}

func TestSearcher_FailedLoadStaysUnavailable(t *testing.T) {
	s := NewSearcher(func(context.Context) (Embedder, Store, error) {
		return nil, nil, errors.New("model file missing")
	})

	done := s.StartLoad(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("load never completed")
	}

	assert.Equal(t, StateUnavailable, s.State())
	assert.False(t, s.IsReady())

	_, err := s.Search(context.Background(), "stroke", search.Options{})
	assert.Error(t, err)
}

func TestSearcher_StartLoadIsSingleFlight(t *testing.T) {
	var loads int32
	release := make(chan struct{})

	s := NewSearcher(func(context.Context) (Embedder, Store, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return &fakeEmbedder{vec: []float32{1}}, &fakeStore{}, nil
	})

	var wg sync.WaitGroup
	channels := make([]<-chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			channels[i] = s.StartLoad(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateLoading, s.State())

	close(release)
	for _, ch := range channels {
		<-ch
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads), "load function must run exactly once")
	assert.True(t, s.IsReady())
}
