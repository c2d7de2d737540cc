package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics holds all Prometheus metrics for the API server.
type APIMetrics struct {
	RequestsTotal          *prometheus.CounterVec
	AuditEventsTotal       *prometheus.CounterVec
	AuthVerificationsTotal *prometheus.CounterVec
	LoginBlockedTotal      prometheus.Counter
}

// NewAPIMetrics initializes and registers the Prometheus metrics.
func NewAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eduflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests by method and status class.",
		}, []string{"method", "status_class"}), // status_class: 2xx, 3xx, 4xx, 5xx
		AuditEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eduflow",
			Subsystem: "audit",
			Name:      "events_total",
			Help:      "Total number of audit events written by category.",
		}, []string{"category"}),
		AuthVerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eduflow",
			Subsystem: "auth",
			Name:      "token_verifications_total",
			Help:      "Total number of token verifications by result.",
		}, []string{"result"}),
		LoginBlockedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "eduflow",
			Subsystem: "auth",
			Name:      "login_attempts_blocked_total",
			Help:      "Total number of login attempts rejected by the per-IP throttle.",
		}),
	}
}
