package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service's Prometheus collectors. A single instance is
// created at startup and threaded through the transports.
type Metrics struct {
	LinksCreated  prometheus.Counter
	LinksResolved prometheus.Counter
	LinksPurged   prometheus.Counter
	GameSessions  prometheus.Gauge
	GameOutcomes  *prometheus.CounterVec
	RequestErrors *prometheus.CounterVec
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "valentine_links_created_total",
			Help: "Number of short links created.",
		}),
		LinksResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "valentine_links_resolved_total",
			Help: "Number of successful short link resolutions.",
		}),
		LinksPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "valentine_links_purged_total",
			Help: "Number of expired short links removed by purges.",
		}),
		GameSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "valentine_game_sessions_active",
			Help: "Number of game sessions currently running.",
		}),
		GameOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valentine_game_outcomes_total",
			Help: "Game verdicts by outcome.",
		}, []string{"outcome"}),
		RequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valentine_request_errors_total",
			Help: "API errors by kind.",
		}, []string{"kind"}),
	}
}
