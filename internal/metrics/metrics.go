// Package metrics exposes Prometheus instruments for the optimizer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "budget"

// Recorder records optimization runs on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	optimizations *prometheus.CounterVec
	duration      prometheus.Histogram
	nodes         prometheus.Histogram
	lastLoss      prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry. Process and Go
// runtime collectors are registered alongside the budget metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		optimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizations_total",
			Help:      "Optimization runs by final solver status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time of optimization runs.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_nodes",
			Help:      "Search nodes explored per optimization run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
		lastLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_loss",
			Help:      "Weighted loss of the most recent solved run.",
		}),
	}

	r.registry.MustRegister(
		r.optimizations,
		r.duration,
		r.nodes,
		r.lastLoss,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveOptimization records one run.
func (r *Recorder) ObserveOptimization(status string, elapsed time.Duration, nodes int64) {
	r.optimizations.WithLabelValues(status).Inc()
	r.duration.Observe(elapsed.Seconds())
	r.nodes.Observe(float64(nodes))
}

// ObserveLoss records the loss of a solved run.
func (r *Recorder) ObserveLoss(loss int64) {
	r.lastLoss.Set(float64(loss))
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
