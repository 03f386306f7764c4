package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scanDuration    prometheus.Histogram
	instruments     *prometheus.CounterVec
	signals         *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	validations     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	snapshotVersion prometheus.Gauge
}

// New registers the recorder's collectors with the default registry, so it
// must be called once per process.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		scanDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalscan_scan_duration_seconds",
				Help:    "Duration of one scan tick",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		instruments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_scan_instruments_total",
				Help: "Instruments processed by the scanner by result",
			},
			[]string{"result"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_signals_total",
				Help: "Signals emitted",
			},
			[]string{"kind", "direction"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_alerts_total",
				Help: "Pump/dump alerts emitted",
			},
			[]string{"kind"},
		),
		validations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_validations_total",
				Help: "Validation observations by status",
			},
			[]string{"status"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		snapshotVersion: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalscan_snapshot_version",
				Help: "Version of the published snapshot",
			},
		),
	}
}

func (r *Recorder) RecordScan(seconds float64) {
	r.scanDuration.Observe(seconds)
}

// RecordInstrument counts one scanned instrument; result is ok, skipped or error.
func (r *Recorder) RecordInstrument(result string) {
	r.instruments.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordSignal(kind, direction string) {
	r.signals.WithLabelValues(kind, direction).Inc()
}

func (r *Recorder) RecordAlert(kind string) {
	r.alerts.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordValidation(status string) {
	r.validations.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) SetSnapshotVersion(v uint64) {
	r.snapshotVersion.Set(float64(v))
}
