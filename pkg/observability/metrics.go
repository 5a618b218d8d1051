package observability

import (
	"net/http"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by tree hooks.
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry. openTrees, when non-nil, is
// sampled on every scrape.
func NewMetrics(openTrees func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itemtree_mutations_total",
				Help: "Total number of structural mutations applied to trees",
			},
			[]string{"tree", "op"},
		),
	}
	m.registry.MustRegister(m.mutations)
	if openTrees != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "itemtree_open_trees",
				Help: "Number of trees currently open in the workspace",
			},
			func() float64 { return float64(openTrees()) },
		))
	}
	return m
}

// Hooks counts every mutation of the named tree.
func (m *Metrics) Hooks(tree string) domain.Hooks {
	return domain.Hooks{
		OnMutation: func(e domain.MutationEvent) {
			m.mutations.WithLabelValues(tree, string(e.Op)).Inc()
		},
	}
}

// Mutations exposes the counter for inspection.
func (m *Metrics) Mutations() *prometheus.CounterVec {
	return m.mutations
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
