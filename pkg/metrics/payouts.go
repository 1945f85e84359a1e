package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PayoutMetrics records payout lifecycle and ACH dispatch activity.
type PayoutMetrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	dispatches  *prometheus.CounterVec
	dispatchDur *prometheus.HistogramVec
}

// NewPayoutMetrics registers the payout metrics on the provided registerer.
func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	if reg == nil {
		return &PayoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transitions_total",
		Help: "Applied payout status transitions.",
	}, []string{"from", "to"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transition_rejections_total",
		Help: "Payout status transitions refused by the state machine.",
	}, []string{"from", "to"})
	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_dispatch_total",
		Help: "ACH dispatch attempts by provider and outcome.",
	}, []string{"provider", "outcome"})
	dispatchDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ach_dispatch_duration_seconds",
		Help:    "Duration of ACH provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(transitions, rejections, dispatches, dispatchDur)
	return &PayoutMetrics{
		transitions: transitions,
		rejections:  rejections,
		dispatches:  dispatches,
		dispatchDur: dispatchDur,
	}
}

// IncTransition counts an applied status change.
func (m *PayoutMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncRejection counts a refused status change.
func (m *PayoutMetrics) IncRejection(from, to string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveDispatch records one provider call and its outcome.
func (m *PayoutMetrics) ObserveDispatch(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if m.dispatches != nil {
		m.dispatches.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
	}
	if m.dispatchDur != nil {
		m.dispatchDur.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
