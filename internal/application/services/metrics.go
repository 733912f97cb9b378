package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "The total number of cache store lookups by result (hit, stale, miss)",
		},
		[]string{"result"},
	)

	lookupPeriodsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_periods_total",
			Help: "The total number of resolved lookup periods by terminal status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(cacheLookupsTotal)
	prometheus.MustRegister(lookupPeriodsTotal)
}

func observeCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

func observePeriod(status string) {
	lookupPeriodsTotal.WithLabelValues(status).Inc()
}
