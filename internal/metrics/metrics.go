package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Comparison outcomes used as label values.
const (
	OutcomeOK            = "ok"
	OutcomeFetchError    = "fetch_error"
	OutcomeRangeMismatch = "range_mismatch"
	OutcomePayloadError  = "payload_error"
	OutcomeError         = "error"
	OutcomeCanceled      = "canceled"
)

// Metrics tracks upstream fetches and comparison runs. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	comparisons    *prometheus.CounterVec
	alignedPoints  prometheus.Gauge
	meanDifference prometheus.Gauge
	rmse           prometheus.Gauge
	lastReport     prometheus.Gauge
}

// New constructs the collectors. Register the result with a registry to
// expose them.
func New() *Metrics {
	return &Metrics{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rvm_upstream_fetches_total",
				Help: "The total number of upstream fetches by source and outcome.",
			},
			[]string{"source", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rvm_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream fetches by source.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rvm_comparisons_total",
				Help: "The total number of comparison runs by outcome.",
			},
			[]string{"outcome"},
		),
		alignedPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rvm_aligned_points",
			Help: "Number of samples in the most recent aligned pair.",
		}),
		meanDifference: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rvm_report_mean_difference",
			Help: "Mean radar minus measurement difference of the latest report.",
		}),
		rmse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rvm_report_rmse",
			Help: "Root mean square difference of the latest report.",
		}),
		lastReport: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rvm_report_last_success_timestamp_seconds",
			Help: "Unix time of the latest successful report.",
		}),
	}
}

// ObserveFetch records one upstream request.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case errors.Is(err, context.Canceled):
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeError
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveComparison records the outcome of one fetch-and-align run.
func (m *Metrics) ObserveComparison(outcome string, points int) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.alignedPoints.Set(float64(points))
	}
}

// ObserveReport records the statistics of a successful report.
func (m *Metrics) ObserveReport(at time.Time, meanDifference, rmse float64) {
	if m == nil {
		return
	}
	m.meanDifference.Set(meanDifference)
	m.rmse.Set(rmse)
	m.lastReport.Set(float64(at.Unix()))
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetches.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.comparisons.Describe(ch)
	ch <- m.alignedPoints.Desc()
	ch <- m.meanDifference.Desc()
	ch <- m.rmse.Desc()
	ch <- m.lastReport.Desc()
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.fetches.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.comparisons.Collect(ch)
	ch <- m.alignedPoints
	ch <- m.meanDifference
	ch <- m.rmse
	ch <- m.lastReport
}
