package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/geometry"
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/registry"
	"github.com/san-kum/rigidsync/internal/scene"
	"github.com/san-kum/rigidsync/internal/shape"
	"github.com/san-kum/rigidsync/internal/sim"
	"github.com/san-kum/rigidsync/internal/world"
)

func frameWith(t *testing.T, positions ...mgl32.Vec3) (sim.Frame, []*physics.RigidBody) {
	t.Helper()
	w := world.New(mgl32.Vec3{})
	reg := registry.New()
	var bodies []*physics.RigidBody
	for _, p := range positions {
		body, err := w.CreateBody(shape.NewBall(0.5, shape.Material{Mass: 2}), p, true)
		if err != nil {
			t.Fatal(err)
		}
		if err := reg.Add(scene.NewNode("b", geometry.NewSphere(0.5, 8, 4), scene.Material{}), body); err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, body)
	}
	return sim.Frame{Registry: reg}, bodies
}

func TestKineticEnergy(t *testing.T) {
	f, bodies := frameWith(t, mgl32.Vec3{}, mgl32.Vec3{3, 0, 0})
	bodies[0].SetLinvel(mgl32.Vec3{0, 3, 0}, true)

	m := NewKineticEnergy()
	m.Observe(f)
	// 0.5 * 2 * 9
	if math.Abs(m.Value()-9) > 1e-4 {
		t.Errorf("expected energy 9, got %f", m.Value())
	}

	bodies[0].SetLinvel(mgl32.Vec3{}, true)
	m.Observe(f)
	if math.Abs(m.Value()-4.5) > 1e-4 {
		t.Errorf("expected mean energy 4.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestPeakEnergy(t *testing.T) {
	f, bodies := frameWith(t, mgl32.Vec3{})
	m := NewPeakEnergy()

	bodies[0].SetLinvel(mgl32.Vec3{2, 0, 0}, true)
	m.Observe(f)
	bodies[0].SetLinvel(mgl32.Vec3{1, 0, 0}, true)
	m.Observe(f)

	if math.Abs(m.Value()-4) > 1e-4 {
		t.Errorf("expected peak 4, got %f", m.Value())
	}
}

func TestTotalEnergyWithoutRegistry(t *testing.T) {
	if TotalEnergy(sim.Frame{}) != 0 {
		t.Error("frame without registry should have no energy")
	}
}

func TestStability(t *testing.T) {
	inside, _ := frameWith(t, mgl32.Vec3{1, 1, 1})
	outside, _ := frameWith(t, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, -500, 0})

	s := NewStability(100)
	if s.Value() != 1 {
		t.Error("no samples should count as stable")
	}
	s.Observe(inside)
	s.Observe(outside)
	s.Observe(inside)
	s.Observe(inside)
	if s.Value() != 0.75 {
		t.Errorf("expected 0.75, got %f", s.Value())
	}
}

func TestSleepRatio(t *testing.T) {
	f, bodies := frameWith(t, mgl32.Vec3{}, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{4, 0, 0}, mgl32.Vec3{6, 0, 0})
	bodies[1].Sleep()

	s := NewSleepRatio()
	s.Observe(f)
	if s.Value() != 0.25 {
		t.Errorf("expected 0.25, got %f", s.Value())
	}

	s.Observe(sim.Frame{})
	if s.Value() != 0 {
		t.Errorf("empty frame should report 0, got %f", s.Value())
	}
}

func TestFrameRate(t *testing.T) {
	r := NewFrameRate()
	for i := 0; i < 30; i++ {
		r.Observe(sim.Frame{Elapsed: 1.0 / 60})
	}
	if math.Abs(r.Value()-60) > 1e-6 {
		t.Errorf("partial window: expected 60 fps, got %f", r.Value())
	}

	for i := 0; i < 40; i++ {
		r.Observe(sim.Frame{Elapsed: 1.0 / 60})
	}
	if math.Abs(r.Value()-60) > 0.5 {
		t.Errorf("expected about 60 fps, got %f", r.Value())
	}
	if r.Frames() != 70 {
		t.Errorf("expected 70 frames, got %d", r.Frames())
	}

	r.Reset()
	if r.Value() != 0 || r.Frames() != 0 {
		t.Error("expected cleared counter after reset")
	}
}

func TestInstrumentsWithoutProvider(t *testing.T) {
	ins, err := NewInstruments()
	if err != nil {
		t.Fatal(err)
	}
	ins.OnFrame(sim.Frame{Elapsed: 0.016})
	ins.Click(true)
	ins.Click(false)
}
