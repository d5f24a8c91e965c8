package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the lifecycle collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	transitions          *prometheus.CounterVec
	rejectedTransitions  *prometheus.CounterVec
	notificationsCreated *prometheus.CounterVec
	messagesSent         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "internship_portal",
				Subsystem: "lifecycle",
				Name:      "transitions_total",
				Help:      "Status transitions applied, by kind and edge.",
			},
			[]string{"kind", "from", "to"},
		),

		rejectedTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "internship_portal",
				Subsystem: "lifecycle",
				Name:      "transition_errors_total",
				Help:      "Transition attempts refused, by kind and error class.",
			},
			[]string{"kind", "reason"},
		),

		notificationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "internship_portal",
				Subsystem: "notifications",
				Name:      "created_total",
				Help:      "Notifications written to mailboxes, by type.",
			},
			[]string{"type"},
		),

		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "internship_portal",
				Subsystem: "messages",
				Name:      "sent_total",
				Help:      "Composed messages handed to the sender, by result.",
			},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.rejectedTransitions,
		m.notificationsCreated,
		m.messagesSent,
	)

	return m
}

func (m *Metrics) RecordTransition(kind, from, to string) {
	if m == nil {
		return
	}
	if from == "" {
		from = "none"
	}
	m.transitions.WithLabelValues(kind, from, to).Inc()
}

func (m *Metrics) RecordTransitionError(kind, reason string) {
	if m == nil {
		return
	}
	m.rejectedTransitions.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) RecordNotification(notifType string) {
	if m == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(notifType).Inc()
}

func (m *Metrics) RecordMessage(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.messagesSent.WithLabelValues(result).Inc()
}
