package wiki

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome labels.
const (
	outcomeOK            = "ok"
	outcomeNotFound      = "not_found"
	outcomeRedirectCycle = "redirect_cycle"
	outcomeFailed        = "failed"
	outcomeCancelled     = "cancelled"
	outcomeError         = "error"
)

var (
	// fetchTotal counts resolved fetches by outcome
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikicrawler_fetch_total",
		Help: "Total page fetches by outcome",
	}, []string{"outcome"})

	// fetchDuration tracks the time to resolve one page including retries
	// and redirects
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wikicrawler_fetch_duration_seconds",
		Help:    "Page fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
	})

	// fetchRetries counts attempts beyond the first
	fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikicrawler_fetch_retries_total",
		Help: "Total page fetch retries after transient failures",
	})
)
