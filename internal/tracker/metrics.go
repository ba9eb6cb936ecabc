package tracker

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_events_total",
			Help: "Activity events received, by verdict",
		},
		[]string{"verdict"},
	)
	saveRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_save_retries_total",
			Help: "Persistence attempts retried because the database was busy",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_engine_cache_misses_total",
			Help: "Engine lookups that had to load state from storage",
		},
	)
)

// RegisterMetrics registers the tracker's collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(eventsTotal, saveRetries, cacheMisses)
}
