package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radassist_query_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"source"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radassist_query_total",
			Help: "Total number of recommendation queries processed",
		},
		[]string{"status"},
	)

	TopScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radassist_top_score",
			Help:    "Top retrieval score per answered query",
			Buckets: []float64{0.05, 0.1, 0.15, 0.2, 0.3, 0.4, 0.6, 0.8, 1.0},
		},
	)

	SemanticFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radassist_semantic_fallback_total",
			Help: "Total queries answered by the semantic fallback tier",
		},
	)

	SemanticLoadState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radassist_semantic_load_state",
			Help: "Semantic tier state (0 unavailable, 1 loading, 2 ready)",
		},
	)

	ProtocolSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radassist_protocol_selections_total",
			Help: "Total protocol selections by source and match type",
		},
		[]string{"source", "match_type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radassist_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radassist_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	UserSatisfaction = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "radassist_satisfaction_score",
			Help: "User feedback satisfaction score",
		},
		[]string{"helpful"},
	)

	ScenariosIndexed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radassist_scenarios_indexed_total",
			Help: "Total scenarios in the lexical index",
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(TopScore)
	prometheus.MustRegister(SemanticFallbacks)
	prometheus.MustRegister(SemanticLoadState)
	prometheus.MustRegister(ProtocolSelections)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(UserSatisfaction)
	prometheus.MustRegister(ScenariosIndexed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
