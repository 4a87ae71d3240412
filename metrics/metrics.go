// Package metrics exposes build and expansion counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "addonsmith"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	componentsRegistered prometheus.Counter
	expansions           *prometheus.CounterVec
	buildErrors          *prometheus.CounterVec
	buildDuration        prometheus.Histogram
	filesBuilt           prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		componentsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "components_registered_total",
			Help:      "Virtual components registered during discovery.",
		}),
		expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Virtual component expansions, by component.",
		}, []string{"component"}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Failed file builds, by error kind.",
		}, []string{"kind"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time to build one behavior file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		filesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_built_total",
			Help:      "Behavior files built successfully.",
		}),
	}
	m.registry.MustRegister(
		m.componentsRegistered,
		m.expansions,
		m.buildErrors,
		m.buildDuration,
		m.filesBuilt,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ComponentRegistered counts one discovered component. It matches the
// component.WithRegisterHook signature.
func (m *Metrics) ComponentRegistered(string) {
	m.componentsRegistered.Inc()
}

// Expanded counts one expansion. It matches the expand.Observer signature.
func (m *Metrics) Expanded(_, component string) {
	m.expansions.WithLabelValues(component).Inc()
}

// BuildFinished records the outcome of one file build. kind is empty on
// success.
func (m *Metrics) BuildFinished(d time.Duration, kind string) {
	m.buildDuration.Observe(d.Seconds())
	if kind == "" {
		m.filesBuilt.Inc()
		return
	}
	m.buildErrors.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
