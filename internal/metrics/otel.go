package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/san-kum/rigidsync/internal/sim"
)

const instrumentationName = "github.com/san-kum/rigidsync/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instruments publishes frame timings and input counts through the global
// OTel meter. Without a configured provider every call is a no-op.
type Instruments struct {
	cycle  metric.Float64Histogram
	frames metric.Int64Counter
	clicks metric.Int64Counter
}

func NewInstruments() (*Instruments, error) {
	m := meter()
	i := &Instruments{}

	var err error
	i.cycle, err = m.Float64Histogram(
		"rigidsync.frame.elapsed",
		metric.WithDescription("Wall time between frames"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame histogram: %w", err)
	}

	i.frames, err = m.Int64Counter(
		"rigidsync.frames",
		metric.WithDescription("Completed frame cycles"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame counter: %w", err)
	}

	i.clicks, err = m.Int64Counter(
		"rigidsync.clicks",
		metric.WithDescription("Pointer clicks, by whether a body was pushed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating click counter: %w", err)
	}

	return i, nil
}

func (i *Instruments) OnFrame(f sim.Frame) {
	ctx := context.Background()
	i.cycle.Record(ctx, f.Elapsed)
	i.frames.Add(ctx, 1)
}

func (i *Instruments) Click(pushed bool) {
	i.clicks.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("pushed", pushed)))
}
