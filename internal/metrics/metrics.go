// Package metrics provides Prometheus metrics for the watch-party server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session deletion reasons.
const (
	ReasonHostLeft = "host_left"
	ReasonExpired  = "expired"
)

var (
	// ActiveSessions tracks the number of sessions currently in the store.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchparty_active_sessions",
			Help: "Number of currently active watch sessions",
		},
	)

	// ConnectedClients tracks open signaling connections.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchparty_connected_clients",
			Help: "Number of open signaling connections",
		},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchparty_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchparty_sessions_deleted_total",
			Help: "Total number of sessions deleted",
		},
		[]string{"reason"},
	)

	JoinRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchparty_join_rejections_total",
			Help: "Total number of rejected join attempts",
		},
		[]string{"reason"},
	)

	// SignalsRelayed counts handshake messages by kind and outcome (delivered, dropped).
	SignalsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchparty_signals_relayed_total",
			Help: "Total number of relayed WebRTC handshake messages",
		},
		[]string{"kind", "outcome"},
	)

	StateUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchparty_state_updates_total",
			Help: "Total number of accepted playback state reports",
		},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchparty_chat_messages_total",
			Help: "Total number of chat messages fanned out",
		},
	)
)

// RecordSessionCreated increments session creation metrics.
func RecordSessionCreated() {
	SessionsCreated.Inc()
	ActiveSessions.Inc()
}

// RecordSessionDeleted increments session deletion metrics.
func RecordSessionDeleted(reason string) {
	SessionsDeleted.WithLabelValues(reason).Inc()
	ActiveSessions.Dec()
}

func RecordSignal(kind string, delivered bool) {
	outcome := "dropped"
	if delivered {
		outcome = "delivered"
	}
	SignalsRelayed.WithLabelValues(kind, outcome).Inc()
}
