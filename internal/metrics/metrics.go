package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels how a lookup ended.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeEmpty      Outcome = "empty"       // page parsed, nothing extracted
	OutcomeFetchError Outcome = "fetch_error" // transport failure
	OutcomeHTTPError  Outcome = "http_error"  // non-2xx status
	OutcomeBlocked    Outcome = "blocked"     // bot-protection page
	OutcomeParseError Outcome = "parse_error"
)

// Recorder collects lookup metrics in a private registry. The process is
// short-lived, so metrics are written to a node-exporter textfile instead
// of being served.
type Recorder struct {
	reg *prometheus.Registry

	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    prometheus.Histogram
	bytes    prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "youdao_lookups_total",
				Help: "Total number of dictionary lookups by query language and outcome",
			},
			[]string{"language", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "youdao_fetch_duration_seconds",
				Help:    "Duration of dictionary page fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		items: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "youdao_result_items",
			Help:    "Number of result items produced per lookup",
			Buckets: []float64{1, 2, 4, 8, 16},
		}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "youdao_fetch_bytes_total",
			Help: "Total bytes of dictionary pages downloaded",
		}),
	}
}

// RecordLookup records one finished lookup.
func (r *Recorder) RecordLookup(language string, outcome Outcome, items int, fetch time.Duration, bodyBytes int) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(language, string(outcome)).Inc()
	r.duration.WithLabelValues(string(outcome)).Observe(fetch.Seconds())
	r.items.Observe(float64(items))
	r.bytes.Add(float64(bodyBytes))
}

// Gatherer exposes the registry the recorder writes to.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteFile atomically writes the metrics in text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Gatherer()); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
