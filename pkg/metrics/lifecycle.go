package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records aggregate lifecycle transitions per entity family.
type LifecycleMetrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Successful lifecycle transitions by entity type and action.",
	}, []string{"entity_type", "action"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_failures_total",
		Help: "Rejected lifecycle operations by entity type and error code.",
	}, []string{"entity_type", "code"})
	reg.MustRegister(transitions, failures)
	return &LifecycleMetrics{
		transitions: transitions,
		failures:    failures,
	}
}

// IncTransition counts a successful transition for the named action.
func (m *LifecycleMetrics) IncTransition(entityType, action string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(entityType, action).Inc()
}

// IncFailure counts a rejected operation by error code.
func (m *LifecycleMetrics) IncFailure(entityType, code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(entityType, code).Inc()
}
