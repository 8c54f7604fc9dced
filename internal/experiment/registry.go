package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigidsync/internal/metrics"
	"github.com/san-kum/rigidsync/internal/sim"
)

// Registry maps metric names to constructors so runs can select metrics by
// name from the command line.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]func() sim.Metric)}

	r.metrics["kinetic_energy"] = func() sim.Metric { return metrics.NewKineticEnergy() }
	r.metrics["peak_energy"] = func() sim.Metric { return metrics.NewPeakEnergy() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(100) }
	r.metrics["sleep_ratio"] = func() sim.Metric { return metrics.NewSleepRatio() }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
