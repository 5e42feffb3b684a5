package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK      = "ok"
	ResultDropped = "dropped"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	tcpConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgerealm",
			Subsystem: "tcp",
			Name:      "connections_total",
			Help:      "Connection tasks by terminal outcome.",
		},
		[]string{"outcome"},
	)
	tcpActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgerealm",
			Subsystem: "tcp",
			Name:      "actions_total",
			Help:      "Connection actions offered to the action bus.",
		},
		[]string{"kind", "result"},
	)
	tcpAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edgerealm",
			Subsystem: "tcp",
			Name:      "accepted_total",
			Help:      "Accepted inbound connections.",
		},
	)
	realmDispatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgerealm",
			Subsystem: "realm",
			Name:      "dispatch_total",
			Help:      "Actions dispatched to the realm action handler.",
		},
		[]string{"realm", "result"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgerealm",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status HTTP requests.",
		},
		[]string{"realm", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(tcpConnections, tcpActions, tcpAccepted, realmDispatch, httpRequests)
	})
}

func RecordAccepted() {
	RegisterMetrics()
	tcpAccepted.Inc()
}

// RecordConnectionExit counts one finished connection task. outcome is
// "ok" or the name of the failure class.
func RecordConnectionExit(outcome string) {
	RegisterMetrics()
	tcpConnections.WithLabelValues(outcome).Inc()
}

func RecordAction(kind string, delivered bool) {
	RegisterMetrics()
	result := ResultOK
	if !delivered {
		result = ResultDropped
	}
	tcpActions.WithLabelValues(kind, result).Inc()
}

func RecordDispatch(realm string, err error) {
	RegisterMetrics()
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	realmDispatch.WithLabelValues(realm, result).Inc()
}
