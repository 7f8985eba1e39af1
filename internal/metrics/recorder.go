package metrics

import (
	"time"

	"seminar-results-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports results and freeze activity as Prometheus metrics.
type Recorder struct {
	served  *prometheus.CounterVec
	latency *prometheus.HistogramVec
	freezes *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seminar",
			Subsystem: "results",
			Name:      "served_total",
			Help:      "Result listings served, by kind and source.",
		}, []string{"kind", "source"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seminar",
			Subsystem: "results",
			Name:      "duration_seconds",
			Help:      "Time to produce a result listing.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "source"}),
		freezes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seminar",
			Subsystem: "results",
			Name:      "freeze_attempts_total",
			Help:      "Freeze attempts, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(r.served, r.latency, r.freezes)
	return r
}

func (r *Recorder) ResultsServed(kind domain.SnapshotKind, source string, elapsed time.Duration) {
	r.served.WithLabelValues(string(kind), source).Inc()
	r.latency.WithLabelValues(string(kind), source).Observe(elapsed.Seconds())
}

func (r *Recorder) FreezeAttempt(kind domain.SnapshotKind, outcome string) {
	r.freezes.WithLabelValues(string(kind), outcome).Inc()
}
