package indexer

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/search/expand"
	"github.com/radassist/backend/internal/search/lexical"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

func init() {
	logger.InitNop()
}

type fakeSource struct {
	scenarios []models.Scenario
	err       error
}

func (f *fakeSource) ListScenarios() ([]models.Scenario, error) {
	return f.scenarios, f.err
}

func TestBuild(t *testing.T) {
	source := &fakeSource{scenarios: []models.Scenario{
		{ID: 1, Name: "knee pain", Description: "<p>meniscal tear</p>"},
		{ID: 2, Name: "shoulder pain"},
	}}

	file, err := NewBuilder(source).Build()
	require.NoError(t, err)

	// description HTML is stripped and its terms stemmed into the vocabulary
	assert.Equal(t, []string{"knee", "menisc", "pain", "shoulder", "tear"}, file.Vocabulary)

	// "pain" appears in both documents: idf = log(3/3) + 1
	require.Len(t, file.IDF, 5)
	assert.InDelta(t, 1.0, file.IDF[2], 1e-9)
	assert.InDelta(t, math.Log(1.5)+1, file.IDF[0], 1e-9)

	require.Len(t, file.Docs, 2)
	assert.Equal(t, "1", file.Docs[0].ID)
	assert.Equal(t, "knee pain", file.Docs[0].Title)
	assert.Equal(t, "/scenario?id=1", file.Docs[0].URL)

	require.Len(t, file.Vectors, 2)
	// name terms are counted twice: weight = (1 + log 2) * idf
	assert.InDelta(t, (1+math.Log(2))*1.0, file.Vectors[0]["2"], 1e-9)
	assert.Contains(t, file.Vectors[0], "1")
	assert.NotContains(t, file.Vectors[1], "0", "shoulder doc has no knee term")
}

func TestBuild_NoScenarios(t *testing.T) {
	_, err := NewBuilder(&fakeSource{}).Build()
	assert.Error(t, err)
}

func TestBuild_SourceError(t *testing.T) {
	_, err := NewBuilder(&fakeSource{err: errors.New("db closed")}).Build()
	assert.Error(t, err)
}

func TestWriteIndexFile_Roundtrip(t *testing.T) {
	source := &fakeSource{scenarios: []models.Scenario{
		{ID: 1, Name: "knee pain"},
		{ID: 2, Name: "shoulder pain"},
	}}

	file, err := NewBuilder(source).Build()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tfidf_index.json")
	require.NoError(t, WriteIndexFile(path, file))

	index, err := lexical.LoadIndex(path)
	require.NoError(t, err)

	searcher := lexical.NewSearcher(index, expand.New(nil))
	results := searcher.Search(context.Background(), "knee pain", search.Options{Limit: 5, MinScore: 0.05})
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].ID)
}
