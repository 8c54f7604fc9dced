package experiment

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/app"
	"github.com/san-kum/rigidsync/internal/config"
	"github.com/san-kum/rigidsync/internal/metrics"
	"github.com/san-kum/rigidsync/internal/sim"
)

// SweepRow summarises one gravity variant.
type SweepRow struct {
	Gravity   float32
	Frames    int
	Energy    float64
	Peak      float64
	Stability float64
	Asleep    float64
}

// GravitySweep runs one independent scene per vertical gravity value in
// parallel and reports energy and settling figures for each.
func GravitySweep(ctx context.Context, base *config.Config, gravities []float32, frames int) ([]SweepRow, error) {
	if base == nil {
		base = config.DefaultConfig()
	}
	factory := func(i int) (*sim.Driver, error) {
		cfg := *base
		cfg.Bodies = append([]config.BodyConfig(nil), base.Bodies...)
		cfg.Gravity = mgl32.Vec3{base.Gravity.X(), gravities[i], base.Gravity.Z()}

		a, err := app.New(&cfg)
		if err != nil {
			return nil, fmt.Errorf("gravity %g: %w", gravities[i], err)
		}
		d := a.NewDriver(sim.WithClock(sim.FixedClock(cfg.Run.FrameRate)))
		d.AddMetric(metrics.NewKineticEnergy())
		d.AddMetric(metrics.NewPeakEnergy())
		d.AddMetric(metrics.NewStability(100))
		d.AddMetric(metrics.NewSleepRatio())
		return d, nil
	}

	results, err := sim.NewEnsemble(factory, len(gravities), frames).Run(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]SweepRow, len(results))
	for i, res := range results {
		rows[i] = SweepRow{
			Gravity:   gravities[i],
			Frames:    res.Frames,
			Energy:    res.Metrics["kinetic_energy"],
			Peak:      res.Metrics["peak_energy"],
			Stability: res.Metrics["stability"],
			Asleep:    res.Metrics["sleep_ratio"],
		}
	}
	return rows, nil
}

// GravityRange returns n evenly spaced values from lo to hi inclusive.
func GravityRange(lo, hi float32, n int) []float32 {
	if n <= 1 {
		return []float32{lo}
	}
	out := make([]float32, n)
	step := (hi - lo) / float32(n-1)
	for i := range out {
		out[i] = lo + step*float32(i)
	}
	return out
}
