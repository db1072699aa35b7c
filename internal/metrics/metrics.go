package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the justification flow, exposed on /metrics.
var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "justification_uploads_total",
		Help: "Attachment uploads by outcome.",
	}, []string{"outcome"})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "justification_submissions_total",
		Help: "Justification submissions by outcome.",
	}, []string{"outcome"})

	ListingCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absence_listing_cache_hits_total",
		Help: "Absence listing reads served from cache.",
	})

	ListingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absence_listing_cache_misses_total",
		Help: "Absence listing reads that went upstream.",
	})

	ListingCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absence_listing_cache_invalidations_total",
		Help: "Per-student cache invalidations triggered by submissions.",
	})
)
