// Package recommend orchestrates the retrieval pipeline: lexical search with
// a conditional semantic fallback, intent-based re-ranking, scenario
// resolution and appropriateness grouping. Every failure path returns a
// structured Result; callers never see a raw error or panic.
package recommend

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/metrics"
	"github.com/radassist/backend/internal/rating"
	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/search/intent"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

// Thresholds names every score boundary the engine uses. The semantic
// fallback gate and the confidence-label boundaries are distinct knobs; do
// not conflate them.
type Thresholds struct {
	Limit            int
	MinScore         float64
	SemanticFallback float64
	ConfidenceHigh   float64
	ConfidenceMedium float64
	MinQueryLength   int
	RelatedScenarios int
	ClarifyMargin    float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Limit:            10,
		MinScore:         0.05,
		SemanticFallback: 0.15,
		ConfidenceHigh:   0.4,
		ConfidenceMedium: 0.2,
		MinQueryLength:   2,
		RelatedScenarios: 4,
		ClarifyMargin:    0.02,
	}
}

type LexicalSearcher interface {
	Search(ctx context.Context, query string, opts search.Options) []search.Result
}

type SemanticSearcher interface {
	IsReady() bool
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

type IntentClassifier interface {
	Classify(query string) intent.Prediction
}

type Storage interface {
	GetScenario(id int) (*models.Scenario, error)
	FindScenarioByName(name string) (*models.Scenario, error)
	GetRatedProcedures(scenarioID int) ([]models.RatedProcedure, error)
	InsertRecommendationRecord(record *models.RecommendationRecord) error
}

// Cache is the optional recommendation-result cache. Nil disables caching.
type Cache interface {
	GetRecommendation(ctx context.Context, query string) (*Result, bool, error)
	SetRecommendation(ctx context.Context, query string, result *Result) error
}

type Engine struct {
	lexical    LexicalSearcher
	semantic   SemanticSearcher
	intents    IntentClassifier
	db         Storage
	cache      Cache
	thresholds Thresholds
}

func NewEngine(lexical LexicalSearcher, semantic SemanticSearcher, intents IntentClassifier, db Storage, cache Cache, thresholds Thresholds) *Engine {
	return &Engine{
		lexical:    lexical,
		semantic:   semantic,
		intents:    intents,
		db:         db,
		cache:      cache,
		thresholds: thresholds,
	}
}

func (e *Engine) GetRecommendations(ctx context.Context, query, userID string) *Result {
	start := time.Now()

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < e.thresholds.MinQueryLength {
		return &Result{Error: "Query is too short. Please describe the clinical presentation."}
	}

	if e.cache != nil {
		if cached, ok, err := e.cache.GetRecommendation(ctx, trimmed); err == nil && ok {
			metrics.CacheHits.WithLabelValues("recommendation").Inc()
			return cached
		}
		metrics.CacheMisses.WithLabelValues("recommendation").Inc()
	}

	candidates, source := e.retrieve(ctx, trimmed)
	if len(candidates) == 0 {
		metrics.QueryTotal.WithLabelValues("no_match").Inc()
		return &Result{Error: "No matching clinical scenarios found. Try rephrasing with the suspected condition or symptom."}
	}

	candidates = e.applyIntentBoosts(trimmed, candidates)

	if questions := e.clarificationNeeded(candidates); questions != nil {
		metrics.QueryTotal.WithLabelValues("clarification").Inc()
		return &Result{
			NeedsClarification:  true,
			ClarifyingQuestions: questions,
			Interpretation:      fmt.Sprintf("Your query could match %q or %q.", candidates[0].Title, candidates[1].Title),
		}
	}

	result := e.buildResult(trimmed, candidates, source)

	if result.Success {
		latency := int(time.Since(start).Milliseconds())
		e.recordHistory(result, trimmed, userID, candidates[0].Score, source, latency)

		metrics.QueryTotal.WithLabelValues("success").Inc()
		metrics.QueryDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		metrics.TopScore.Observe(candidates[0].Score)
	} else {
		metrics.QueryTotal.WithLabelValues("error").Inc()
	}

	if e.cache != nil && result.Success {
		if err := e.cache.SetRecommendation(ctx, trimmed, result); err != nil {
			logger.Debug("Failed to cache recommendation", zap.Error(err))
		}
	}

	return result
}

// retrieve runs the lexical tier and falls back to semantic only when the
// lexical top score is weak, the semantic tier is ready, and semantic
// actually beats lexical. Semantic must not even be invoked when lexical is
// confident.
func (e *Engine) retrieve(ctx context.Context, query string) ([]search.Result, string) {
	opts := search.Options{Limit: e.thresholds.Limit, MinScore: e.thresholds.MinScore}

	lexResults := e.lexical.Search(ctx, query, opts)

	lexTop := 0.0
	if len(lexResults) > 0 {
		lexTop = lexResults[0].Score
	}

	if lexTop >= e.thresholds.SemanticFallback || e.semantic == nil || !e.semantic.IsReady() {
		return lexResults, "lexical"
	}

	semResults, err := e.semantic.Search(ctx, query, opts)
	if err != nil {
		logger.Warn("Semantic fallback failed", zap.Error(err))
		return lexResults, "lexical"
	}

	if len(semResults) > 0 && semResults[0].Score > lexTop {
		metrics.SemanticFallbacks.Inc()
		return semResults, "semantic"
	}

	return lexResults, "lexical"
}

// applyIntentBoosts re-ranks candidates by multiplying scores with the
// phase/urgency boost factors.
func (e *Engine) applyIntentBoosts(query string, candidates []search.Result) []search.Result {
	if e.intents == nil {
		return candidates
	}

	pred := e.intents.Classify(query)

	boosted := make([]search.Result, len(candidates))
	for i, c := range candidates {
		phase, urgency := intent.InferScenarioTraits(c.Title)
		c.Score *= intent.Boost(pred, phase, urgency)
		boosted[i] = c
	}

	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].Score > boosted[j].Score
	})

	return boosted
}

// clarificationNeeded reports near-tied top candidates from visibly
// different scenarios.
func (e *Engine) clarificationNeeded(candidates []search.Result) []string {
	if len(candidates) < 2 {
		return nil
	}
	top, second := candidates[0], candidates[1]
	if top.Score-second.Score > e.thresholds.ClarifyMargin {
		return nil
	}
	if top.Title == second.Title {
		return nil
	}

	return []string{
		fmt.Sprintf("Are you evaluating %q?", top.Title),
		fmt.Sprintf("Or are you evaluating %q?", second.Title),
	}
}

// buildResult resolves the winning scenario and assembles the grouped
// response. Any panic past this point is converted to a generic error.
func (e *Engine) buildResult(query string, candidates []search.Result, source string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recommendation build panicked",
				zap.Any("panic", r),
				zap.String("query", query),
			)
			result = &Result{Error: "Failed to generate recommendations. Please try again."}
		}
	}()

	top := candidates[0]

	scenario, err := e.resolveScenario(top)
	if err != nil {
		logger.Error("Failed to resolve scenario", zap.Error(err), zap.String("title", top.Title))
		return &Result{Error: "Failed to generate recommendations. Please try again."}
	}

	procs, err := e.db.GetRatedProcedures(scenario.ID)
	if err != nil {
		logger.Error("Failed to load rated procedures", zap.Error(err), zap.Int("scenario_id", scenario.ID))
		return &Result{Error: "Failed to generate recommendations. Please try again."}
	}

	recommendations := groupProcedures(procs)

	related := candidates[1:]
	if len(related) > e.thresholds.RelatedScenarios {
		related = related[:e.thresholds.RelatedScenarios]
	}

	return &Result{
		Success:          true,
		ID:               uuid.New().String(),
		Scenario:         scenario,
		Recommendations:  recommendations,
		Confidence:       e.confidenceLabel(top.Score),
		RelatedScenarios: related,
		Source:           source,
	}
}

// resolveScenario parses the scenario id from the result URL's query
// parameter, with a name lookup fallback when parsing fails.
func (e *Engine) resolveScenario(top search.Result) (*models.Scenario, error) {
	if id, ok := scenarioIDFromURL(top.URL); ok {
		scenario, err := e.db.GetScenario(id)
		if err == nil {
			return scenario, nil
		}
		logger.Warn("Scenario id from URL not found, falling back to name",
			zap.Int("id", id),
			zap.Error(err),
		)
	}

	return e.db.FindScenarioByName(top.Title)
}

func scenarioIDFromURL(rawURL string) (int, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	idParam := u.Query().Get("id")
	if idParam == "" {
		return 0, false
	}
	id, err := strconv.Atoi(idParam)
	if err != nil {
		return 0, false
	}
	return id, true
}

// groupProcedures deduplicates by procedure name keeping the highest rating,
// repairs stored data defects, and partitions into appropriateness tiers.
func groupProcedures(procs []models.RatedProcedure) *Recommendations {
	best := make(map[string]models.RatedProcedure)
	var order []string
	for _, p := range procs {
		if existing, ok := best[p.Name]; !ok {
			best[p.Name] = p
			order = append(order, p.Name)
		} else if p.Rating > existing.Rating {
			best[p.Name] = p
		}
	}

	recs := &Recommendations{}
	for _, name := range order {
		p := best[name]
		rec := ProcedureRecommendation{
			Name:        p.Name,
			Modality:    repairModality(p.Modality, p.Name),
			Contrast:    p.Contrast,
			Rating:      p.Rating,
			RatingLevel: repairRatingLevel(p.RatingLevel, p.Rating),
		}

		switch rating.TierFor(p.Rating) {
		case rating.UsuallyAppropriate:
			recs.UsuallyAppropriate = append(recs.UsuallyAppropriate, rec)
		case rating.MayBeAppropriate:
			recs.MayBeAppropriate = append(recs.MayBeAppropriate, rec)
		default:
			recs.UsuallyNotAppropriate = append(recs.UsuallyNotAppropriate, rec)
		}
	}

	sortByRating := func(s []ProcedureRecommendation) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Rating > s[j].Rating })
	}
	sortByRating(recs.UsuallyAppropriate)
	sortByRating(recs.MayBeAppropriate)
	sortByRating(recs.UsuallyNotAppropriate)

	return recs
}

func (e *Engine) confidenceLabel(topScore float64) string {
	switch {
	case topScore >= e.thresholds.ConfidenceHigh:
		return "high"
	case topScore >= e.thresholds.ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

func (e *Engine) recordHistory(result *Result, query, userID string, topScore float64, source string, latencyMS int) {
	record := &models.RecommendationRecord{
		ID:           result.ID,
		UserID:       userID,
		QueryText:    query,
		ScenarioID:   result.Scenario.ID,
		ScenarioName: result.Scenario.Name,
		Confidence:   result.Confidence,
		TopScore:     topScore,
		Source:       source,
		LatencyMS:    latencyMS,
		CreatedAt:    time.Now(),
	}

	if err := e.db.InsertRecommendationRecord(record); err != nil {
		logger.Warn("Failed to record recommendation history", zap.Error(err))
	}
}
