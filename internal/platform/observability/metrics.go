package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_analyses_total",
		Help: "The total number of completed analyses by classification",
	}, []string{"classification"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scamshield_analysis_duration_seconds",
		Help:    "End-to-end duration of analysis requests",
		Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5},
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scamshield_stage_duration_seconds",
		Help:    "Duration of individual analysis stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	PartialResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_partial_results_total",
		Help: "Analyses returned with partial=true because the deadline elapsed",
	})

	DegradedResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_degraded_results_total",
		Help: "Analyses served in degraded mode by dependency",
	}, []string{"dependency"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scamshield_breaker_state",
		Help: "Circuit breaker state per dependency (0 closed, 1 open, 2 half-open)",
	}, []string{"dependency"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_retries_total",
		Help: "Retry attempts by dependency",
	}, []string{"dependency"})

	TrustCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_trust_cache_hits_total",
		Help: "Domain trust cache hits by layer (memory, store)",
	}, []string{"layer"})

	TrustCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_trust_cache_misses_total",
		Help: "Domain trust lookups that required an external fetch",
	})

	TrustLookupsDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_trust_lookups_deduped_total",
		Help: "Concurrent trust lookups coalesced by singleflight",
	})

	PatternsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_patterns_recorded_total",
		Help: "Scam pattern observations recorded by district",
	}, []string{"district"})

	TruthFallbackServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_truth_fallback_served_total",
		Help: "Truth verifications served from the degraded-mode fallback cache",
	})
)
