package semantic

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsFromFields(t *testing.T) {
	fields := client.ResultSet{
		entity.NewColumnVarChar("scenario_id", []string{"1", "2"}),
		entity.NewColumnVarChar("title", []string{"Acute stroke symptoms", "Chronic headache"}),
		entity.NewColumnVarChar("url", []string{"/scenario?id=1", "/scenario?id=2"}),
	}

	results, err := resultsFromFields(fields, []float32{0.9, 0.1}, 2, 0.2)
	require.NoError(t, err)

	// second row is below minScore
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, "Acute stroke symptoms", results[0].Title)
	assert.InDelta(t, 0.9, results[0].Score, 1e-6)
}

func TestResultsFromFields_MissingColumn(t *testing.T) {
	fields := client.ResultSet{
		entity.NewColumnVarChar("scenario_id", []string{"1"}),
		entity.NewColumnVarChar("title", []string{"Acute stroke symptoms"}),
	}

	_, err := resultsFromFields(fields, []float32{0.9}, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing expected output fields")
}

// A collection created with an int64 scenario_id must surface as an error the
// searcher can fall back from, not a panic.
func TestResultsFromFields_RetypedColumn(t *testing.T) {
	fields := client.ResultSet{
		entity.NewColumnInt64("scenario_id", []int64{1}),
		entity.NewColumnVarChar("title", []string{"Acute stroke symptoms"}),
		entity.NewColumnVarChar("url", []string{"/scenario?id=1"}),
	}

	assert.NotPanics(t, func() {
		_, err := resultsFromFields(fields, []float32{0.9}, 1, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scenario_id")
	})
}
