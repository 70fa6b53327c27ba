package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/metrics"
)

func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := sf.DefaultConfig()
	cfg.Threshold = 1
	cfg.Observer = metrics.New(reg)
	v := sf.New(cfg)

	s := dsl.Object(dsl.Field("id", dsl.String()), dsl.Field("n", dsl.Number()))
	for i := 0; i < 3; i++ {
		v.Validate(s, map[string]any{"id": "x", "n": 1})
	}
	v.Fix(s, map[string]any{"id": 1})
	if !v.Is(s, map[string]any{"id": "y", "n": 2}) {
		t.Fatalf("valid input rejected")
	}

	if got := counter(t, reg, "shapefix_specializations_total", map[string]string{"kind": "object"}); got != 1 {
		t.Fatalf("specializations = %v, want 1", got)
	}
	if got := counter(t, reg, "shapefix_checks_total", map[string]string{"op": "validate"}); got != 3 {
		t.Fatalf("validate checks = %v, want 3", got)
	}
	if got := counter(t, reg, "shapefix_reported_errors_total", map[string]string{"op": "fix"}); got != 2 {
		t.Fatalf("fix errors = %v, want 2", got)
	}
	if got := counter(t, reg, "shapefix_failed_checks_total", map[string]string{"op": "fix"}); got != 1 {
		t.Fatalf("failed fix calls = %v, want 1", got)
	}
}
