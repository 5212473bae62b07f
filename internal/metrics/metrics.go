package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitTotal counts listing reads served from either cache tier.
	CacheHitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "universalis_cache_hit_total",
		Help: "Listing cache hits by tier.",
	}, []string{"tier"})

	// CacheMissTotal counts listing reads that fell through to the database.
	CacheMissTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "universalis_cache_miss_total",
		Help: "Listing cache misses.",
	})

	// CacheTimeoutTotal counts distributed-cache probes abandoned at the
	// 1s bound and treated as misses.
	CacheTimeoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "universalis_cache_timeout_total",
		Help: "Distributed cache probes that timed out.",
	})

	// CacheErrorTotal counts swallowed cache failures other than timeouts.
	CacheErrorTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "universalis_cache_error_total",
		Help: "Swallowed cache errors.",
	})

	// UploadTotal counts authenticated uploads by outcome.
	UploadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "universalis_upload_total",
		Help: "Processed uploads by outcome.",
	}, []string{"outcome"})
)
