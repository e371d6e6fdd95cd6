// Package metrics exposes Prometheus collectors for uploads and analyses.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "image_text_reader"
	subsystem = "analysis"
)

// Recorder implements domain.MetricsRecorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	analysisTotal    *prometheus.CounterVec
	attemptsTotal    prometheus.Counter
	analysisDuration *prometheus.HistogramVec
	uploadsTotal     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		// analysisTotal counts finished analyses by outcome.
		analysisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total",
			Help:      "Total number of image analyses, labeled by outcome.",
		}, []string{"outcome"}),

		attemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attempts_total",
			Help:      "Total number of calls made to the remote model, retries included.",
		}),

		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "End-to-end time of an analysis including backoff.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"outcome"}),

		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of upload requests, labeled by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.analysisTotal,
		r.attemptsTotal,
		r.analysisDuration,
		r.uploadsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveAttempt() {
	r.attemptsTotal.Inc()
}

func (r *Recorder) ObserveAnalysis(outcome string, duration time.Duration) {
	r.analysisTotal.WithLabelValues(outcome).Inc()
	r.analysisDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (r *Recorder) ObserveUpload(result string) {
	r.uploadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObserveAttempt() {}

func (Noop) ObserveAnalysis(string, time.Duration) {}

func (Noop) ObserveUpload(string) {}
