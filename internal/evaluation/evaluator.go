// Package evaluation measures retrieval quality against a labeled dataset
// of query -> expected-scenario pairs. Results are persisted so quality can
// be tracked across index rebuilds.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

// LabeledQuery is one row of the evaluation dataset.
type LabeledQuery struct {
	Query            string `json:"query"`
	ExpectedScenario int    `json:"expected_scenario"`
}

type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) []search.Result
}

type ResultStore interface {
	InsertEvaluationResult(result *models.EvaluationResult) error
}

// Report aggregates a full evaluation run.
type Report struct {
	Total         int     `json:"total"`
	Top1Correct   int     `json:"top1_correct"`
	Top1Accuracy  float64 `json:"top1_accuracy"`
	MRR           float64 `json:"mrr"`
	MissedQueries int     `json:"missed_queries"`
}

type Evaluator struct {
	searcher Searcher
	store    ResultStore
}

func NewEvaluator(searcher Searcher, store ResultStore) *Evaluator {
	return &Evaluator{searcher: searcher, store: store}
}

func LoadDataset(path string) ([]LabeledQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation dataset: %w", err)
	}

	var queries []LabeledQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation dataset: %w", err)
	}

	return queries, nil
}

// Run evaluates every labeled query and persists per-query results. A rank
// of 0 means the expected scenario was not retrieved at all.
func (e *Evaluator) Run(ctx context.Context, dataset []LabeledQuery) (*Report, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("evaluation dataset is empty")
	}

	report := &Report{Total: len(dataset)}
	var reciprocalSum float64

	for _, lq := range dataset {
		results := e.searcher.Search(ctx, lq.Query, search.Options{Limit: 10, MinScore: 0.05})

		rank := 0
		actual := 0
		topScore := 0.0

		if len(results) > 0 {
			topScore = results[0].Score
			if id, err := strconv.Atoi(results[0].ID); err == nil {
				actual = id
			}
			for i, r := range results {
				if id, err := strconv.Atoi(r.ID); err == nil && id == lq.ExpectedScenario {
					rank = i + 1
					break
				}
			}
		}

		switch {
		case rank == 1:
			report.Top1Correct++
			reciprocalSum += 1.0
		case rank > 1:
			reciprocalSum += 1.0 / float64(rank)
		default:
			report.MissedQueries++
		}

		if e.store != nil {
			record := &models.EvaluationResult{
				Query:            lq.Query,
				ExpectedScenario: lq.ExpectedScenario,
				ActualScenario:   actual,
				Rank:             rank,
				TopScore:         topScore,
				CreatedAt:        time.Now(),
			}
			if err := e.store.InsertEvaluationResult(record); err != nil {
				logger.Warn("Failed to persist evaluation result", zap.Error(err))
			}
		}
	}

	report.Top1Accuracy = float64(report.Top1Correct) / float64(report.Total)
	report.MRR = reciprocalSum / float64(report.Total)

	logger.Info("Evaluation complete",
		zap.Int("total", report.Total),
		zap.Float64("top1_accuracy", report.Top1Accuracy),
		zap.Float64("mrr", report.MRR),
	)

	return report, nil
}
