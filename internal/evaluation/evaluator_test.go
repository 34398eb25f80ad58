package evaluation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

func init() {
	logger.InitNop()
}

type fakeSearcher struct {
	results map[string][]search.Result
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ search.Options) []search.Result {
	return f.results[query]
}

type fakeStore struct {
	records []*models.EvaluationResult
}

func (f *fakeStore) InsertEvaluationResult(r *models.EvaluationResult) error {
	f.records = append(f.records, r)
	return nil
}

func TestRun_ComputesAccuracyAndMRR(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]search.Result{
		"knee pain": {
			{ID: "1", Score: 0.52},
		},
		"headache": {
			{ID: "3", Score: 0.31},
			{ID: "2", Score: 0.28},
		},
		"rare presentation": {
			{ID: "9", Score: 0.11},
		},
	}}
	store := &fakeStore{}

	report, err := NewEvaluator(searcher, store).Run(context.Background(), []LabeledQuery{
		{Query: "knee pain", ExpectedScenario: 1},
		{Query: "headache", ExpectedScenario: 2},
		{Query: "rare presentation", ExpectedScenario: 4},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Top1Correct)
	assert.InDelta(t, 1.0/3.0, report.Top1Accuracy, 1e-9)
	assert.InDelta(t, 0.5, report.MRR, 1e-9, "(1 + 1/2 + 0) / 3")
	assert.Equal(t, 1, report.MissedQueries)

	require.Len(t, store.records, 3)
	headache := store.records[1]
	assert.Equal(t, 2, headache.ExpectedScenario)
	assert.Equal(t, 3, headache.ActualScenario)
	assert.Equal(t, 2, headache.Rank)
	assert.InDelta(t, 0.31, headache.TopScore, 1e-9)

	missed := store.records[2]
	assert.Equal(t, 0, missed.Rank)
}

func TestRun_EmptyDataset(t *testing.T) {
	_, err := NewEvaluator(&fakeSearcher{}, nil).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRun_NilStore(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]search.Result{
		"knee pain": {{ID: "1", Score: 0.5}},
	}}

	report, err := NewEvaluator(searcher, nil).Run(context.Background(), []LabeledQuery{
		{Query: "knee pain", ExpectedScenario: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Top1Correct)
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.json")
	payload := `[{"query":"knee pain","expected_scenario":12}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	queries, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "knee pain", queries[0].Query)
	assert.Equal(t, 12, queries[0].ExpectedScenario)
}

func TestLoadDataset_Missing(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
