// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rustdex"

// Transport labels for lookups.
const (
	TransportHTTP  = "http"
	TransportRelay = "relay"
	TransportNATS  = "nats"
)

// Metrics is a private registry with the service's collectors. Each value
// is independent, so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	lookups      *prometheus.CounterVec
	reloads      *prometheus.CounterVec
	requests     *prometheus.CounterVec
	modules      prometheus.Gauge
	capabilities prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Capability lookups by transport and outcome.",
		}, []string{"transport", "status"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		modules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_modules",
			Help:      "Modules in the active catalog.",
		}),
		capabilities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_capabilities",
			Help:      "Capabilities in the active catalog.",
		}),
	}

	m.registry.MustRegister(
		m.lookups,
		m.reloads,
		m.requests,
		m.modules,
		m.capabilities,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLookup counts one lookup answered over transport.
func (m *Metrics) ObserveLookup(transport, status string) {
	m.lookups.WithLabelValues(transport, status).Inc()
}

// ObserveReload counts a reload attempt.
func (m *Metrics) ObserveReload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// ObserveRequest counts one HTTP response.
func (m *Metrics) ObserveRequest(route, code string) {
	m.requests.WithLabelValues(route, code).Inc()
}

// SetCatalogSize records the size of the active catalog.
func (m *Metrics) SetCatalogSize(modules, capabilities int) {
	m.modules.Set(float64(modules))
	m.capabilities.Set(float64(capabilities))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the underlying registry for tests and embedding.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
