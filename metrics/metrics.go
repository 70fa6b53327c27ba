// Package metrics exports validator activity as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer implements shapefix.Observer.
type Observer struct {
	specializations *prometheus.CounterVec
	checks          *prometheus.CounterVec
	reported        *prometheus.CounterVec
	failed          *prometheus.CounterVec
}

// New registers the shapefix counters on reg; a nil reg uses the default registerer.
//
//	cfg := shapefix.DefaultConfig()
//	cfg.Observer = metrics.New(prometheus.DefaultRegisterer)
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Observer{
		specializations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapefix_specializations_total",
			Help: "Adaptive checks that switched to their specialized plan, by schema kind.",
		}, []string{"kind"}),
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapefix_checks_total",
			Help: "Top-level validator calls, by operation.",
		}, []string{"op"}),
		reported: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapefix_reported_errors_total",
			Help: "Validation errors reported to callers, by operation.",
		}, []string{"op"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shapefix_failed_checks_total",
			Help: "Top-level calls that found at least one error, by operation.",
		}, []string{"op"}),
	}
}

// Specialized counts a plan installation.
func (o *Observer) Specialized(kind string) { o.specializations.WithLabelValues(kind).Inc() }

// Finished counts one call and the errors it reported.
func (o *Observer) Finished(op string, errors int) {
	o.checks.WithLabelValues(op).Inc()
	if errors == 0 {
		return
	}
	o.reported.WithLabelValues(op).Add(float64(errors))
	o.failed.WithLabelValues(op).Inc()
}
