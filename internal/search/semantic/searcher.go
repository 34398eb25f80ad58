// Package semantic implements the embedding-based search tier. The model and
// scenario embeddings load lazily and asynchronously; callers check State
// and skip this tier while it is not Ready.
package semantic

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/pkg/logger"
)

type LoadState int

const (
	StateUnavailable LoadState = iota
	StateLoading
	StateReady
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unavailable"
	}
}

// LoadFunc produces the embedder and store. Run at most once.
type LoadFunc func(ctx context.Context) (Embedder, Store, error)

type Searcher struct {
	loadFn LoadFunc

	mu       sync.Mutex
	state    LoadState
	done     chan struct{}
	embedder Embedder
	store    Store
}

func NewSearcher(loadFn LoadFunc) *Searcher {
	return &Searcher{
		loadFn: loadFn,
		state:  StateUnavailable,
	}
}

// StartLoad begins the asynchronous load. The first caller starts it; every
// caller receives the same completion channel. A failed load leaves the
// searcher Unavailable, it does not error the caller.
func (s *Searcher) StartLoad(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return s.done
	}

	s.done = make(chan struct{})
	s.state = StateLoading

	go func() {
		embedder, store, err := s.loadFn(ctx)

		s.mu.Lock()
		if err != nil {
			s.state = StateUnavailable
			logger.Warn("Semantic search unavailable", zap.Error(err))
		} else {
			s.embedder = embedder
			s.store = store
			s.state = StateReady
			logger.Info("Semantic search ready", zap.Int("dimension", embedder.Dimension()))
		}
		s.mu.Unlock()

		close(s.done)
	}()

	return s.done
}

func (s *Searcher) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Searcher) IsReady() bool {
	return s.State() == StateReady
}

func (s *Searcher) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	s.mu.Lock()
	embedder, store, state := s.embedder, s.store, s.state
	s.mu.Unlock()

	if state != StateReady {
		return nil, fmt.Errorf("semantic search is %s", state)
	}

	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := store.Rank(ctx, queryVec, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to rank scenarios: %w", err)
	}

	return results, nil
}
