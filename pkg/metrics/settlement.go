package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records outcomes of the payment settlement flow.
type SettlementMetrics struct {
	duration      *prometheus.HistogramVec
	confirmations *prometheus.CounterVec
	webhooks      *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_confirm_duration_seconds",
		Help:    "Duration of payment confirmation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_confirmations_total",
		Help: "Payment confirmation attempts by outcome.",
	}, []string{"outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_webhook_events_total",
		Help: "Inbound gateway webhook events by resolution.",
	}, []string{"resolution"})
	reg.MustRegister(duration, confirmations, webhooks)
	return &SettlementMetrics{
		duration:      duration,
		confirmations: confirmations,
		webhooks:      webhooks,
	}
}

// ObserveConfirmDuration records how long a confirmation transaction took.
func (s *SettlementMetrics) ObserveConfirmDuration(provider string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// IncConfirmation increments the confirmation counter for the given outcome.
func (s *SettlementMetrics) IncConfirmation(outcome string) {
	if s == nil || s.confirmations == nil {
		return
	}
	s.confirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhook increments the webhook counter for the given resolution.
func (s *SettlementMetrics) IncWebhook(resolution string) {
	if s == nil || s.webhooks == nil {
		return
	}
	s.webhooks.WithLabelValues(normalizeLabel(resolution)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
