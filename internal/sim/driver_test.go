package sim_test

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsync/internal/geometry"
	"github.com/san-kum/rigidsync/internal/registry"
	"github.com/san-kum/rigidsync/internal/scene"
	"github.com/san-kum/rigidsync/internal/shape"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/world"
)

var errBoom = errors.New("boom")

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type flakyStepper struct {
	next   sim.Stepper
	failAt int
	calls  int
	deltas []float32
}

func (s *flakyStepper) Step(dt float32) error {
	s.calls++
	s.deltas = append(s.deltas, dt)
	if s.calls == s.failAt {
		return errBoom
	}
	return s.next.Step(dt)
}

type checkingRenderer struct {
	reg        *registry.Registry
	driver     *sim.Driver
	renders    int
	mismatches int
	states     []sim.State
}

func (r *checkingRenderer) Render(*scene.Scene, *scene.Camera) error {
	r.renders++
	if r.driver != nil {
		r.states = append(r.states, r.driver.State())
	}
	for _, b := range r.reg.Bindings() {
		if b.Node.Position != b.Body.Translation() || b.Node.Quaternion != b.Body.Rotation() {
			r.mismatches++
		}
	}
	return nil
}

type frameCounter struct{ n int }

func (c *frameCounter) Name() string      { return "frames" }
func (c *frameCounter) Observe(sim.Frame) { c.n++ }
func (c *frameCounter) Value() float64    { return float64(c.n) }
func (c *frameCounter) Reset()            { c.n = 0 }

type frameLog struct{ frames []sim.Frame }

func (l *frameLog) OnFrame(f sim.Frame) { l.frames = append(l.frames, f) }

type rig struct {
	ctrl     *world.Controller
	reg      *registry.Registry
	scene    *scene.Scene
	camera   *scene.Camera
	stepper  *flakyStepper
	renderer *checkingRenderer
	clock    *stepClock
}

func newRig() *rig {
	r := &rig{
		ctrl:   world.New(mgl32.Vec3{0, -9.81, 0}),
		reg:    registry.New(),
		scene:  scene.New(),
		camera: scene.NewCamera(75, 4.0/3, 0.1, 100),
		clock:  &stepClock{now: time.Unix(0, 0), step: time.Second / 60},
	}
	r.stepper = &flakyStepper{next: r.ctrl}
	r.renderer = &checkingRenderer{reg: r.reg}

	mat := shape.Material{Mass: 1, Restitution: 0.5}
	for i, pos := range []mgl32.Vec3{{0, 5, 0}, {-2, 5, 0}} {
		body, err := r.ctrl.CreateBody(shape.NewBall(0.5, mat), pos, true)
		Expect(err).NotTo(HaveOccurred())
		node := scene.NewNode([]string{"a", "b"}[i], geometry.NewSphere(0.5, 8, 4), scene.Material{})
		r.scene.Add(node)
		Expect(r.reg.Add(node, body)).To(Succeed())
	}
	return r
}

func (r *rig) driver(opts ...sim.Option) *sim.Driver {
	opts = append([]sim.Option{sim.WithClock(r.clock.Now)}, opts...)
	d := sim.NewDriver(r.stepper, r.reg, r.scene, r.camera, r.renderer, opts...)
	r.renderer.driver = d
	return d
}

var _ = Describe("ClampDelta", func() {
	DescribeTable("maps elapsed wall time into [0, MaxDelta]",
		func(in float64, want float32) {
			Expect(sim.ClampDelta(in)).To(Equal(want))
		},
		Entry("zero", 0.0, float32(0)),
		Entry("negative", -1.0, float32(0)),
		Entry("NaN", math.NaN(), float32(0)),
		Entry("in range", 0.05, float32(0.05)),
		Entry("at the bound", 0.1, float32(sim.MaxDelta)),
		Entry("long stall", 2.5, float32(sim.MaxDelta)),
		Entry("infinite", math.Inf(1), float32(sim.MaxDelta)),
	)
})

var _ = Describe("Driver", func() {
	var (
		r   *rig
		ctx context.Context
	)

	BeforeEach(func() {
		r = newRig()
		ctx = context.Background()
	})

	It("steps with zero on the first frame and the measured delta afterwards", func() {
		d := r.driver()
		_, err := d.RunFrames(ctx, 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.stepper.deltas).To(HaveLen(3))
		Expect(r.stepper.deltas[0]).To(BeZero())
		Expect(r.stepper.deltas[1]).To(BeNumerically("~", 1.0/60, 1e-6))
		Expect(r.stepper.deltas[2]).To(BeNumerically("~", 1.0/60, 1e-6))
	})

	It("clamps a long stall to the maximum delta", func() {
		r.clock.step = 3 * time.Second
		d := r.driver()
		_, err := d.RunFrames(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.stepper.deltas[1]).To(Equal(float32(sim.MaxDelta)))
	})

	It("honours a custom delta bound", func() {
		r.clock.step = time.Second
		d := r.driver(sim.WithMaxDelta(0.02))
		_, err := d.RunFrames(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.stepper.deltas[1]).To(Equal(float32(0.02)))
	})

	It("never raises the bound above MaxDelta", func() {
		r.clock.step = 5 * time.Second
		d := r.driver(sim.WithMaxDelta(0.9))
		_, err := d.RunFrames(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.stepper.deltas[1]).To(Equal(float32(sim.MaxDelta)))
	})

	It("steps with zero when the clock goes backwards", func() {
		r.clock.step = -time.Second
		d := r.driver()
		_, err := d.RunFrames(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.stepper.deltas[1]).To(BeZero())
	})

	It("copies every body pose onto its node before rendering", func() {
		d := r.driver()
		_, err := d.RunFrames(ctx, 30)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.renderer.renders).To(Equal(30))
		Expect(r.renderer.mismatches).To(BeZero())
		for _, b := range r.reg.Bindings() {
			Expect(b.Node.Position.Y()).To(BeNumerically("<", 5))
		}
	})

	It("renders in the Rendering state and rests Idle between frames", func() {
		d := r.driver()
		Expect(d.State()).To(Equal(sim.Idle))
		Expect(d.Cycle()).To(Succeed())
		Expect(r.renderer.states).To(Equal([]sim.State{sim.Rendering}))
		Expect(d.State()).To(Equal(sim.Idle))
	})

	It("stops for good after a failed step", func() {
		r.stepper.failAt = 3
		d := r.driver()

		res, err := d.RunFrames(ctx, 10)
		Expect(err).To(MatchError(errBoom))
		Expect(res.Frames).To(Equal(2))
		Expect(r.renderer.renders).To(Equal(2))
		Expect(d.Err()).To(MatchError(errBoom))

		Expect(d.Cycle()).To(MatchError(errBoom))
		Expect(r.stepper.calls).To(Equal(3))
		Expect(d.State()).To(Equal(sim.Idle))
	})

	It("propagates a fatal world error through Run", func() {
		d := r.driver()
		body := r.reg.Bindings()[0].Body
		body.SetLinvel(mgl32.Vec3{float32(math.NaN()), 0, 0}, true)

		err := d.Run(ctx)
		Expect(err).To(MatchError(world.ErrSimulationFatal))
		Expect(r.ctrl.Fatal()).To(HaveOccurred())
	})

	It("ends Run cleanly when the pacer stops", func() {
		calls := 0
		d := r.driver(sim.WithPacer(func(context.Context) error {
			calls++
			if calls == 5 {
				return sim.ErrStopped
			}
			return nil
		}))

		Expect(d.Run(ctx)).To(Succeed())
		Expect(d.Frames()).To(Equal(4))
	})

	It("returns the pacer's own errors", func() {
		d := r.driver(sim.WithPacer(func(context.Context) error { return errBoom }))
		Expect(d.Run(ctx)).To(MatchError(errBoom))
		Expect(d.Frames()).To(BeZero())
	})

	It("stops Run when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		calls := 0
		d := r.driver(sim.WithPacer(func(context.Context) error {
			calls++
			if calls == 3 {
				cancel()
			}
			return nil
		}))

		Expect(d.Run(ctx)).To(MatchError(context.Canceled))
		Expect(d.Frames()).To(Equal(3))
	})

	It("feeds metrics and observers once per frame", func() {
		d := r.driver()
		counter := &frameCounter{}
		frames := &frameLog{}
		d.AddMetric(counter)
		d.AddObserver(frames)

		res, err := d.RunFrames(ctx, 12)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(Equal(12))
		Expect(res.Metrics).To(HaveKeyWithValue("frames", 12.0))
		Expect(frames.frames).To(HaveLen(12))
		Expect(frames.frames[11].Index).To(Equal(11))
		Expect(res.Time).To(BeNumerically("~", 11.0/60, 1e-5))
		Expect(frames.frames[11].Time).To(Equal(res.Time))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent instances", func() {
		factory := func(i int) (*sim.Driver, error) {
			r := newRig()
			return r.driver(), nil
		}
		results, err := sim.NewEnsemble(factory, 3, 20).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, res := range results {
			Expect(res.Frames).To(Equal(20))
		}
	})

	It("fails when any instance cannot be built", func() {
		factory := func(i int) (*sim.Driver, error) {
			if i == 1 {
				return nil, errBoom
			}
			return newRig().driver(), nil
		}
		_, err := sim.NewEnsemble(factory, 3, 5).Run(context.Background())
		Expect(err).To(MatchError(errBoom))
	})
})

var _ = Describe("FixedClock", func() {
	It("advances by one frame per call", func() {
		clock := sim.FixedClock(50)
		a, b, c := clock(), clock(), clock()
		Expect(b.Sub(a)).To(Equal(20 * time.Millisecond))
		Expect(c.Sub(b)).To(Equal(20 * time.Millisecond))
	})
})
