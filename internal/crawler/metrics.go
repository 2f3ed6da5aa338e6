package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts finished searches by outcome
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikicrawler_search_total",
		Help: "Total searches by outcome",
	}, []string{"outcome"})

	// layerSize tracks how many pages each expanded layer held
	layerSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wikicrawler_layer_size",
		Help:    "Number of pages in each expanded search layer",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
	})

	// cacheLookups counts link cache lookups by result
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikicrawler_link_cache_lookups_total",
		Help: "Total link cache lookups by result",
	}, []string{"result"}) // "hit", "miss" or "error"
)
