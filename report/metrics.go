package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics describes one parse run. It lives on its own registry so a batch job can write it
// for the node exporter textfile collector.
type Metrics struct {
	reg *prometheus.Registry

	Records       prometheus.Counter
	Deviations    *prometheus.CounterVec
	ShortRows     prometheus.Counter
	ParseDuration prometheus.Histogram
}

// NewMetrics creates the parse metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Records: f.NewCounter(prometheus.CounterOpts{
			Name: "voters_records_total",
			Help: "Voter records mapped",
		}),
		Deviations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voters_deviations_total",
			Help: "Structural deviations by field and kind",
		}, []string{"field", "kind"}),
		ShortRows: f.NewCounter(prometheus.CounterOpts{
			Name: "voters_short_rows_total",
			Help: "Rows with too few fields to map",
		}),
		ParseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "voters_parse_duration_seconds",
			Help:    "Time to read and map an export",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
	}
}

// Observe records a summary and how long the parse took.
func (m *Metrics) Observe(s *Summary, d time.Duration) {
	if m == nil {
		return
	}
	m.Records.Add(float64(s.Records))
	m.ShortRows.Add(float64(len(s.Skipped)))
	for _, fc := range s.Fields {
		for k, n := range fc.Kinds {
			m.Deviations.WithLabelValues(fc.Field, string(k)).Add(float64(n))
		}
	}
	m.ParseDuration.Observe(d.Seconds())
}

// Registry exposes the metrics registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// WriteTextfile writes the metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
