package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Derivation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// Metrics holds the tutor's collectors, registered on one registry.
type Metrics struct {
	Derivations     *prometheus.CounterVec
	ChatReplies     *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Derivations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "derivtutor_derivations_total",
			Help: "Derivations computed, by outcome",
		}, []string{"outcome"}),
		ChatReplies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "derivtutor_chat_replies_total",
			Help: "Chat replies, by matched rule",
		}, []string{"rule"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "derivtutor_http_requests_total",
			Help: "HTTP requests, by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "derivtutor_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
	}
}

// Outcome classifies a derivation for the Derivations counter.
func Outcome(err error, degraded bool) string {
	switch {
	case err != nil:
		return OutcomeError
	case degraded:
		return OutcomeDegraded
	}
	return OutcomeOK
}

// ObserveRequest counts one request and records its latency.
func (m *Metrics) ObserveRequest(route, code string, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, code).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
