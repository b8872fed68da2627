package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	invoicesGenerated  *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	pdfRenderDuration  prometheus.Histogram
	loginAttempts      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

// New registers all collectors under the given namespace
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		invoicesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_generated_total",
			Help:      "Invoices generated and recorded, by invoice type.",
		}, []string{"type"}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_generation_failures_total",
			Help:      "Aborted invoice generations, by failing stage.",
		}, []string{"stage"}),
		pdfRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pdf_render_duration_seconds",
			Help:      "Time spent converting rendered HTML into PDF.",
			Buckets:   prometheus.DefBuckets,
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.invoicesGenerated,
		m.generationFailures,
		m.pdfRenderDuration,
		m.loginAttempts,
		m.httpRequests,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) InvoiceGenerated(invoiceType string) {
	if m == nil {
		return
	}
	m.invoicesGenerated.WithLabelValues(invoiceType).Inc()
}

func (m *Metrics) GenerationFailed(stage string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObservePDFRender(d time.Duration) {
	if m == nil {
		return
	}
	m.pdfRenderDuration.Observe(d.Seconds())
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
