package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks tournament submissions, moderation decisions and nearby-search latency.
type Metrics struct {
	TournamentsCreated prometheus.Counter
	TournamentsDeleted prometheus.Counter
	StatusChanges      *prometheus.CounterVec
	NearbyDuration     prometheus.Histogram
	NearbyResults      prometheus.Histogram
}

// New registers the tournament metrics with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests,
// since registering the same metric twice on one registry panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TournamentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tournaments_created_total",
			Help: "Total number of tournaments submitted",
		}),
		TournamentsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "tournaments_deleted_total",
			Help: "Total number of tournaments deleted",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_status_changes_total",
			Help: "Total number of status updates, by new status",
		}, []string{"status"}),
		NearbyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tournament_nearby_query_duration_seconds",
			Help:    "Duration of nearby tournament searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		NearbyResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tournament_nearby_results",
			Help:    "Number of tournaments returned by nearby searches",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.TournamentsCreated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.TournamentsDeleted.Inc()
}

// IncrementStatusChange records a successful status update to status.
func (m *Metrics) IncrementStatusChange(status string) {
	m.StatusChanges.WithLabelValues(status).Inc()
}

// ObserveNearby records one nearby search.
// Call with time.Now() taken before the query and the number of matches returned.
func (m *Metrics) ObserveNearby(start time.Time, results int) {
	m.NearbyDuration.Observe(time.Since(start).Seconds())
	m.NearbyResults.Observe(float64(results))
}
