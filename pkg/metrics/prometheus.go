package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsTotal    *prometheus.CounterVec
	intentsTotal *prometheus.CounterVec
	guardTrips   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apexcore_bars_processed_total",
				Help: "Total number of bars processed per series",
			},
			[]string{"series", "symbol"},
		),
		intentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apexcore_intents_total",
				Help: "Total number of trade intents emitted",
			},
			[]string{"kind", "reason"},
		),
		guardTrips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apexcore_guard_trips_total",
				Help: "Total number of risk guard trips",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apexcore_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apexcore_last_price",
				Help: "Last close price per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apexcore_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBar records one processed bar.
func (r *Recorder) RecordBar(series, symbol string) {
	r.barsTotal.WithLabelValues(series, symbol).Inc()
}

// RecordIntent records one emitted trade intent.
func (r *Recorder) RecordIntent(kind, reason string) {
	r.intentsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordGuardTrip records a risk guard trip.
func (r *Recorder) RecordGuardTrip(reason string) {
	r.guardTrips.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
