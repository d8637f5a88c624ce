package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes engine counters through Prometheus. A nil *Recorder is a
// valid no-op so components can be built without metrics in tests.
type Recorder struct {
	alertsTotal      *prometheus.CounterVec
	evaluationsTotal *prometheus.CounterVec
	evalDuration     *prometheus.HistogramVec
	actionsTotal     *prometheus.CounterVec
	notifyErrors     *prometheus.CounterVec
	catalogRefreshes *prometheus.CounterVec
}

// New registers the collectors on reg. Use prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		alertsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_alerts_total",
				Help: "Webhook alerts by ingestion result",
			},
			[]string{"result"},
		),
		evaluationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_evaluations_total",
				Help: "Strategy evaluations by final state",
			},
			[]string{"state"},
		),
		evalDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strategist_evaluation_duration_seconds",
				Help:    "Duration of a single strategy evaluation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"state"},
		),
		actionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_actions_total",
				Help: "Recorded actions by kind",
			},
			[]string{"action"},
		),
		notifyErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_notify_errors_total",
				Help: "Failed action notifications",
			},
			[]string{"notifier"},
		),
		catalogRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strategist_catalog_refreshes_total",
				Help: "Indicator catalog refresh attempts",
			},
			[]string{"result"},
		),
	}
}

// RecordAlert counts an ingested webhook: accepted, rejected or failed.
func (r *Recorder) RecordAlert(result string) {
	if r == nil {
		return
	}
	r.alertsTotal.WithLabelValues(result).Inc()
}

// RecordEvaluation counts one strategy evaluation and its latency.
func (r *Recorder) RecordEvaluation(state string, took time.Duration) {
	if r == nil {
		return
	}
	r.evaluationsTotal.WithLabelValues(state).Inc()
	r.evalDuration.WithLabelValues(state).Observe(took.Seconds())
}

func (r *Recorder) RecordAction(kind string) {
	if r == nil {
		return
	}
	r.actionsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordNotifyError(notifier string) {
	if r == nil {
		return
	}
	r.notifyErrors.WithLabelValues(notifier).Inc()
}

func (r *Recorder) RecordCatalogRefresh(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.catalogRefreshes.WithLabelValues(result).Inc()
}
