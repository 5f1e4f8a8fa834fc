package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/teamverse/internal/validation"
)

// Metrics holds the counters exported on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	Validations    *prometheus.CounterVec
	ParseRequests  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamverse_renders_total",
			Help: "Social image renders by outcome.",
		}, []string{"status"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamverse_render_duration_seconds",
			Help:    "Wall time of social image renders.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamverse_validations_total",
			Help: "Image validations by result.",
		}, []string{"result"}),
		ParseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamverse_parse_requests_total",
			Help: "Source parse requests by outcome.",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamverse_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(m.Renders, m.RenderDuration, m.Validations, m.ParseRequests, m.HTTPRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRender records one render outcome and its duration.
func (m *Metrics) ObserveRender(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(status).Inc()
	m.RenderDuration.Observe(elapsed.Seconds())
}

// ObserveValidation records one image validation.
func (m *Metrics) ObserveValidation(result validation.Result) {
	if m == nil {
		return
	}
	label := "valid"
	if !result.Valid {
		label = "invalid"
	}
	m.Validations.WithLabelValues(label).Inc()
}

// IncParse records one source parse request.
func (m *Metrics) IncParse(status string) {
	if m == nil {
		return
	}
	m.ParseRequests.WithLabelValues(status).Inc()
}

// IncHTTP records one served HTTP request.
func (m *Metrics) IncHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
