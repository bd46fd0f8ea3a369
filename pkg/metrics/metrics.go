// Package metrics exposes venue counters on the default prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks currently connected TCP clients.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "venue_active_connections",
		Help: "Number of currently connected clients.",
	})

	// IntentsTotal counts accepted intents by operation.
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venue_intents_total",
		Help: "Accepted intents by operation.",
	}, []string{"op"})

	// TradesTotal counts crossings by commodity.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venue_trades_total",
		Help: "Trades fired by commodity.",
	}, []string{"commodity"})

	// ParseErrorsTotal counts rejected request lines by protocol error.
	ParseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venue_parse_errors_total",
		Help: "Rejected request lines by error kind.",
	}, []string{"kind"})

	// BroadcastDroppedTotal counts trade events dropped on slow subscribers.
	BroadcastDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venue_broadcast_dropped_total",
		Help: "Trade events dropped because a subscriber lagged.",
	})
)
