// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics is valid and
// records nothing, which keeps handlers usable in tests without a registry.
type Metrics struct {
	gatherer    prometheus.Gatherer
	logins      *prometheus.CounterVec
	tokenChecks *prometheus.CounterVec
	predictions *prometheus.CounterVec
	riskScore   prometheus.Histogram
	requests    *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seizure_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seizure_token_validations_total",
			Help: "Bearer token validations by outcome.",
		}, []string{"outcome"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seizure_predictions_total",
			Help: "Risk assessments by level.",
		}, []string{"level"}),
		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seizure_risk_score",
			Help:    "Distribution of aggregate risk scores.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seizure_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.logins,
		m.tokenChecks,
		m.predictions,
		m.riskScore,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokenCheck(ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	m.tokenChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Prediction(level string, score float64) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(level).Inc()
	m.riskScore.Observe(score)
}

func (m *Metrics) Request(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
