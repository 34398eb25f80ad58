package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/search/expand"
	"github.com/radassist/backend/pkg/logger"
)

func init() {
	logger.InitNop()
}

func testIndex(t *testing.T) *Index {
	t.Helper()

	// weights are (1 + log tf) * idf with tf=1
	file := &IndexFile{
		Vocabulary: []string{"knee", "pain", "swell"},
		IDF:        []float64{1.2, 1.0, 1.5},
		Vectors: []map[string]float64{
			{"0": 1.2, "1": 1.0},
			{"0": 1.2},
			{"2": 1.5},
		},
		Docs: []DocMeta{
			{ID: "1", Title: "Acute knee pain", URL: "/scenario?id=1"},
			{ID: "2", Title: "Chronic knee instability", URL: "/scenario?id=2"},
			{ID: "3", Title: "Soft tissue swelling", URL: "/scenario?id=3"},
		},
	}

	idx, err := NewIndex(file)
	require.NoError(t, err)
	return idx
}

func TestSearch_RanksFullerMatchesHigher(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	results := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.05})

	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].ID, "document matching both query terms must outrank the partial match")
	assert.Equal(t, "2", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_MinScoreFiltersUnrelatedDocs(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	results := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.05})

	for _, r := range results {
		assert.NotEqual(t, "3", r.ID, "zero-overlap document must not appear")
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	results := s.Search(context.Background(), "knee pain", search.Options{Limit: 1, MinScore: 0.05})

	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
}

func TestSearch_OutOfVocabularyQuery(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	assert.Empty(t, s.Search(context.Background(), "zygomatic arch reconstruction", search.Options{Limit: 10, MinScore: 0.05}))
	assert.Empty(t, s.Search(context.Background(), "", search.Options{Limit: 10, MinScore: 0.05}))
}

// Repeating a query term raises its term-frequency weight and with it the
// score of documents carrying that term.
func TestSearch_TermFrequencyMonotonicity(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	once := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.01})
	repeated := s.Search(context.Background(), "knee knee knee pain", search.Options{Limit: 10, MinScore: 0.01})

	require.NotEmpty(t, once)
	require.NotEmpty(t, repeated)

	// doc 2 contains only "knee"; its score must not decrease when the
	// query leans harder on that term
	scoreOf := func(results []search.Result, id string) float64 {
		for _, r := range results {
			if r.ID == id {
				return r.Score
			}
		}
		return 0
	}

	assert.Greater(t, scoreOf(repeated, "2"), scoreOf(once, "2"))
}

// Loosening minScore or raising the limit must only ever add results, never
// drop one that a stricter setting returned.
func TestSearch_ThresholdLoosening(t *testing.T) {
	s := NewSearcher(testIndex(t), expand.New(nil))

	ids := func(results []search.Result) map[string]bool {
		set := make(map[string]bool, len(results))
		for _, r := range results {
			set[r.ID] = true
		}
		return set
	}

	strict := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.9})
	loose := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.05})

	require.NotEmpty(t, strict)
	assert.Greater(t, len(loose), len(strict))
	looseIDs := ids(loose)
	for _, r := range strict {
		assert.True(t, looseIDs[r.ID], "result %s vanished when minScore was lowered", r.ID)
	}

	short := s.Search(context.Background(), "knee pain", search.Options{Limit: 1, MinScore: 0.05})
	long := s.Search(context.Background(), "knee pain", search.Options{Limit: 10, MinScore: 0.05})

	require.NotEmpty(t, short)
	require.GreaterOrEqual(t, len(long), len(short))
	for i, r := range short {
		assert.Equal(t, r.ID, long[i].ID, "raising the limit must keep the existing ranking prefix")
	}
}

type fakeOntology struct {
	calls int
}

func (f *fakeOntology) RelatedTerms(_ context.Context, term string) ([]string, error) {
	f.calls++
	if term == "knee" {
		return []string{"swelling"}, nil
	}
	return nil, nil
}

// Ontology-supplied terms must flow into scoring: "swelling" stems to the
// indexed term and surfaces a document the raw query never touches.
func TestSearch_OntologyTermsReachScoring(t *testing.T) {
	ont := &fakeOntology{}
	s := NewSearcher(testIndex(t), expand.New(ont))

	results := s.Search(context.Background(), "knee", search.Options{Limit: 10, MinScore: 0.01})

	assert.Greater(t, ont.calls, 0, "search must consult the ontology")

	found := false
	for _, r := range results {
		if r.ID == "3" {
			found = true
		}
	}
	assert.True(t, found, "document matching only the ontology term must be retrievable")
}

func TestNewIndex_RejectsCorruptFiles(t *testing.T) {
	_, err := NewIndex(&IndexFile{
		Vocabulary: []string{"a", "b"},
		IDF:        []float64{1.0},
	})
	assert.Error(t, err)

	_, err = NewIndex(&IndexFile{
		Vocabulary: []string{"a"},
		IDF:        []float64{1.0},
		Vectors:    []map[string]float64{{"0": 1.0}},
		Docs:       []DocMeta{},
	})
	assert.Error(t, err)

	// a numeric prefix with trailing characters is not a valid term index
	_, err = NewIndex(&IndexFile{
		Vocabulary: []string{"a"},
		IDF:        []float64{1.0},
		Vectors:    []map[string]float64{{"0x": 1.0}},
		Docs:       []DocMeta{{ID: "1", Title: "a", URL: "/scenario?id=1"}},
	})
	assert.Error(t, err)
}
