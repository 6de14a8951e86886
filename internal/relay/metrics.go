package relay

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "relaybot"

// Trigger and forward outcomes used as metric labels.
const (
	outcomeRelayed = "relayed"
	outcomeMiss    = "miss"
	outcomeFailed  = "failed"
	outcomeSent    = "sent"
)

// Metrics holds the relay's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	events         prometheus.Counter
	triggers       *prometheus.CounterVec
	forwards       *prometheus.CounterVec
	dispatchErrors prometheus.Counter
	failures       prometheus.Counter
	sessionActive  prometheus.Gauge
}

// NewMetrics creates the relay collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Message events handled by the relay engine.",
		}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "triggers_total",
			Help:      "Trigger messages detected in the monitored group, by outcome.",
		}, []string{"outcome"}),
		forwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "forwards_total",
			Help:      "Responder replies relayed to the origin group, by outcome.",
		}, []string{"outcome"}),
		dispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dispatch_errors_total",
			Help:      "Outbound sends that failed.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failures_total",
			Help:      "Unexpected failures recovered while handling an event.",
		}),
		sessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "session_active",
			Help:      "1 while a relay window is open, 0 otherwise.",
		}),
	}
	reg.MustRegister(m.events, m.triggers, m.forwards, m.dispatchErrors, m.failures, m.sessionActive)
	return m
}

func (m *Metrics) event() {
	if m != nil {
		m.events.Inc()
	}
}

func (m *Metrics) trigger(outcome string) {
	if m != nil {
		m.triggers.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) forward(outcome string) {
	if m != nil {
		m.forwards.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) dispatchError() {
	if m != nil {
		m.dispatchErrors.Inc()
	}
}

func (m *Metrics) failure() {
	if m != nil {
		m.failures.Inc()
	}
}

func (m *Metrics) session(active bool) {
	if m == nil {
		return
	}
	if active {
		m.sessionActive.Set(1)
		return
	}
	m.sessionActive.Set(0)
}
