package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

const (
	OutcomeAcknowledged = "acknowledged"
	OutcomeDuplicate    = "duplicate"
	OutcomePending      = "pending"
	OutcomeBadRequest   = "bad_request"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Metrics holds the service counters. A nil *Metrics is a no-op.
type Metrics struct {
	callbacks          *prometheus.CounterVec
	signatureFailures  prometheus.Counter
	duplicateCallbacks prometheus.Counter
	transitions        *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	paymentsCreated    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Payment gateway callbacks by outcome.",
		}, []string{"outcome"}),
		signatureFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_failures_total",
			Help:      "Callbacks rejected because the signature did not verify.",
		}),
		duplicateCallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_callbacks_total",
			Help:      "Callbacks for orders already in a terminal state.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Applied order status transitions by target status.",
		}, []string{"to"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification emails by recipient and result.",
		}, []string{"recipient", "result"}),
		paymentsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_created_total",
			Help:      "Payment creation attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) Callback(outcome string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SignatureFailure() {
	if m == nil {
		return
	}
	m.signatureFailures.Inc()
}

func (m *Metrics) DuplicateCallback() {
	if m == nil {
		return
	}
	m.duplicateCallbacks.Inc()
}

func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) Notification(recipient string, ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(recipient, result(ok)).Inc()
}

func (m *Metrics) PaymentCreated(ok bool) {
	if m == nil {
		return
	}
	m.paymentsCreated.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
