package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"statefulsetpatch/pkg/core"
)

// Recorder provides helpers for emitting Prometheus metrics.
type Recorder struct {
	reconciles   *prometheus.CounterVec
	fieldChanges prometheus.Counter
	retryCycles  prometheus.Counter
	duration     prometheus.Histogram
	errors       prometheus.Counter
}

var defaultRecorder = newRecorder(ctrlmetrics.Registry)

// Default returns the shared metrics recorder registered with controller-runtime.
func Default() *Recorder { return defaultRecorder }

// NewRecorder creates a Recorder bound to the provided registry.
func NewRecorder(reg prometheus.Registerer) *Recorder { return newRecorder(reg) }

func newRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statefulsetpatch_reconciles_total",
			Help: "Total number of StatefulSet patch reconciliations partitioned by outcome.",
		}, []string{"outcome"}),
		fieldChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statefulsetpatch_field_changes_total",
			Help: "Total number of container fields changed by applied patches.",
		}),
		retryCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statefulsetpatch_retry_cycles_total",
			Help: "Total number of read-diff-patch cycles repeated after a retryable API failure (conflict or throttling).",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statefulsetpatch_reconcile_seconds",
			Help:    "Histogram of reconciliation durations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statefulsetpatch_errors_total",
			Help: "Total number of reconciliation errors.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.reconciles, r.fieldChanges, r.retryCycles, r.duration, r.errors)
	}
	return r
}

// ObserveReconcile records metrics for a reconciliation attempt.
func (r *Recorder) ObserveReconcile(result core.Result, reconcileErr error, duration time.Duration) {
	if r == nil {
		return
	}
	outcome := result.Outcome
	if reconcileErr != nil {
		outcome = "error"
		r.errors.Inc()
	}
	if outcome == "" {
		outcome = core.OutcomeUnchanged
	}
	r.reconciles.WithLabelValues(outcome).Inc()
	r.fieldChanges.Add(float64(result.ChangeCount()))
	if result.Attempts > 1 {
		r.retryCycles.Add(float64(result.Attempts - 1))
	}
	r.duration.Observe(duration.Seconds())
}
