package tenancy

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts isolation violations by kind.
type Metrics struct {
	violations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibua_tenancy_violations_total",
			Help: "Rejected reads/writes by isolation violation kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.violations)
	}
	return m
}

func (m *Metrics) violation(err error) {
	if m == nil {
		return
	}
	kind := "unknown"
	switch {
	case errors.Is(err, ErrTenantNotSet):
		kind = "tenant_not_set"
	case errors.Is(err, ErrCrossTenantWrite):
		kind = "cross_tenant_write"
	case errors.Is(err, ErrTenantReassignmentDenied):
		kind = "tenant_reassignment_denied"
	}
	m.violations.WithLabelValues(kind).Inc()
}
