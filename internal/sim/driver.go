package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/rigidsync/internal/logging"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/registry"
	"github.com/san-kum/rigidsync/internal/scene"
)

type Option func(*Driver)

// WithClock replaces time.Now, for deterministic deltas.
func WithClock(clock func() time.Time) Option {
	return func(d *Driver) { d.clock = clock }
}

// FixedClock returns a clock that advances by 1/frameRate seconds per call,
// for headless runs.
func FixedClock(frameRate float64) func() time.Time {
	step := time.Duration(float64(time.Second) / frameRate)
	now := time.Unix(0, 0)
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func WithPacer(p Pacer) Option {
	return func(d *Driver) { d.pacer = p }
}

// WithMaxDelta lowers the step bound. Limits above MaxDelta are capped.
func WithMaxDelta(limit float32) Option {
	return func(d *Driver) {
		if limit > 0 {
			d.maxDelta = min(limit, MaxDelta)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// Driver runs the per-frame cycle: measure, clamp, step, sync, render.
// A Driver is not safe for concurrent use.
type Driver struct {
	world    Stepper
	reg      *registry.Registry
	scene    *scene.Scene
	camera   *scene.Camera
	renderer Renderer

	clock     func() time.Time
	pacer     Pacer
	maxDelta  float32
	metrics   []Metric
	observers []Observer
	log       *log.Logger

	state   State
	last    time.Time
	frames  int
	simTime float64
	fatal   error
}

func NewDriver(world Stepper, reg *registry.Registry, sc *scene.Scene, cam *scene.Camera, r Renderer, opts ...Option) *Driver {
	if r == nil {
		r = NopRenderer{}
	}
	d := &Driver{
		world:    world,
		reg:      reg,
		scene:    sc,
		camera:   cam,
		renderer: r,
		clock:    time.Now,
		maxDelta: MaxDelta,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) State() State     { return d.state }
func (d *Driver) Frames() int      { return d.frames }
func (d *Driver) SimTime() float64 { return d.simTime }

// Err reports the failure that stopped the driver, if any.
func (d *Driver) Err() error { return d.fatal }

// Cycle runs one frame. A failed step is final: the cycle that saw it and
// every later one return the step error.
func (d *Driver) Cycle() error {
	if d.fatal != nil {
		return d.fatal
	}

	now := d.clock()
	var elapsed float64
	if !d.last.IsZero() {
		elapsed = now.Sub(d.last).Seconds()
	}
	d.last = now
	dt := clampDelta(elapsed, d.maxDelta)

	d.state = Stepping
	if err := d.world.Step(dt); err != nil {
		d.state = Idle
		d.fatal = fmt.Errorf("frame %d: %w", d.frames, err)
		d.log.Error("stopping after failed step", "frame", d.frames, "err", err)
		return d.fatal
	}
	d.simTime += float64(dt)

	d.state = Syncing
	d.reg.ForEach(func(node *scene.Node, body *physics.RigidBody) {
		node.Position = body.Translation()
		node.Quaternion = body.Rotation()
	})

	d.state = Rendering
	if err := d.renderer.Render(d.scene, d.camera); err != nil {
		d.state = Idle
		return fmt.Errorf("render frame %d: %w", d.frames, err)
	}

	f := Frame{Index: d.frames, Delta: dt, Elapsed: elapsed, Time: d.simTime, Registry: d.reg}
	d.frames++
	for _, m := range d.metrics {
		m.Observe(f)
	}
	for _, o := range d.observers {
		o.OnFrame(f)
	}
	d.state = Idle
	return nil
}

// Run cycles until ctx is done, the pacer returns ErrStopped, or a cycle
// fails.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.pacer != nil {
			if err := d.pacer(ctx); err != nil {
				if errors.Is(err, ErrStopped) {
					return nil
				}
				return err
			}
		}

		if err := d.Cycle(); err != nil {
			return err
		}
	}
}

// RunFrames runs n cycles and reports metric values. The pacer is not used.
func (d *Driver) RunFrames(ctx context.Context, n int) (*Result, error) {
	for _, m := range d.metrics {
		m.Reset()
	}

	result := &Result{Metrics: make(map[string]float64)}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			d.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := d.Cycle(); err != nil {
			d.collect(result)
			return result, err
		}
		result.Frames++
	}
	d.collect(result)
	return result, nil
}

func (d *Driver) collect(r *Result) {
	r.Time = d.simTime
	for _, m := range d.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
