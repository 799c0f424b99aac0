// Package metrics exposes Prometheus collectors for the content repository
// write path.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/louisbranch/contentrepository/internal/services/content/domain/event"
)

const namespace = "contentrepository"

// Metrics records command outcomes, published events, and the size of the
// dimension space.
type Metrics struct {
	CommandsTotal        *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
	DimensionSpacePoints prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of handled commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of published events",
			},
			[]string{"event_type"},
		),
		DimensionSpacePoints: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dimension_space_points",
				Help:      "Number of points in the allowed dimension subspace",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.CommandsTotal, m.EventsPublishedTotal, m.DimensionSpacePoints} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// CommandHandled counts one command with its outcome.
func (m *Metrics) CommandHandled(commandType string, outcome string) {
	m.CommandsTotal.WithLabelValues(commandType, outcome).Inc()
}

// EventsPublished counts published events by type.
func (m *Metrics) EventsPublished(events []event.Event) {
	for _, evt := range events {
		m.EventsPublishedTotal.WithLabelValues(string(evt.Type)).Inc()
	}
}

// SetDimensionSpacePoints records the size of the allowed subspace.
func (m *Metrics) SetDimensionSpacePoints(n int) {
	m.DimensionSpacePoints.Set(float64(n))
}
