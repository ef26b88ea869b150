// Package metrics registers the coordinator's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set bundles every collector the coordinator updates.
type Set struct {
	ConnectedClients prometheus.Gauge
	OpenLobbies      prometheus.Gauge
	ChatMessages     prometheus.Counter
	CommandErrors    prometheus.Counter
}

func New(reg prometheus.Registerer) *Set {
	f := promauto.With(reg)

	return &Set{
		ConnectedClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "lobbyd_connected_clients",
			Help: "Number of live WebSocket connections.",
		}),
		OpenLobbies: f.NewGauge(prometheus.GaugeOpts{
			Name: "lobbyd_open_lobbies",
			Help: "Number of lobbies, public and private alike.",
		}),
		ChatMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "lobbyd_chat_messages_total",
			Help: "Chat messages accepted and broadcast.",
		}),
		CommandErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "lobbyd_command_errors_total",
			Help: "Commands answered with an error envelope.",
		}),
	}
}
