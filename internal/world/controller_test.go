package world

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/shape"
)

var mat = shape.Material{Mass: 1, Restitution: 1.1}

func TestCreateBodyAtomic(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})

	body, err := c.CreateBody(shape.NewBall(1, mat), mgl32.Vec3{-2, 5, 0}, false)
	if err != nil {
		t.Fatalf("CreateBody failed: %v", err)
	}
	if body.Collider() == nil {
		t.Fatal("body created without collider")
	}
	if body.CanSleep() {
		t.Error("expected canSleep=false")
	}
	if body.Translation() != (mgl32.Vec3{-2, 5, 0}) {
		t.Errorf("unexpected translation %v", body.Translation())
	}

	_, err = c.CreateBody(shape.NewBall(0, mat), mgl32.Vec3{}, true)
	if !errors.Is(err, shape.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	if n := len(c.Bodies()); n != 1 {
		t.Errorf("failed creation left %d bodies, want 1", n)
	}
}

func TestFixedBodyNeverMoves(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})
	floor, err := c.CreateFixedBody(shape.NewCuboid(mgl32.Vec3{50, 0.5, 50}, mat), mgl32.Vec3{0, -1, 0})
	if err != nil {
		t.Fatal(err)
	}
	c.ApplyImpulse(floor, mgl32.Vec3{0, 10, 0}, true)
	for i := 0; i < 30; i++ {
		if err := c.Step(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}
	if floor.Translation() != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("floor moved to %v", floor.Translation())
	}
}

func TestGravitySetters(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})

	c.SetGravityX(1.5)
	c.SetGravityY(-20)
	c.SetGravityZ(0.25)
	if got := c.Gravity(); got != (mgl32.Vec3{1.5, -20, 0.25}) {
		t.Errorf("unexpected gravity %v", got)
	}

	c.SetGravity(mgl32.Vec3{0, -9.81, 0})
	if c.Gravity().Y() != -9.81 {
		t.Errorf("SetGravity not applied: %v", c.Gravity())
	}
}

func TestNonFiniteGravityIgnored(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})
	body, err := c.CreateBody(shape.NewBall(0.5, mat), mgl32.Vec3{0, 5, 0}, false)
	if err != nil {
		t.Fatal(err)
	}

	c.SetGravityY(float32(math.NaN()))
	c.SetGravityX(float32(math.Inf(1)))
	c.SetGravity(mgl32.Vec3{0, float32(math.Inf(-1)), 0})
	if got := c.Gravity(); got != (mgl32.Vec3{0, -9.81, 0}) {
		t.Errorf("non-finite gravity stored: %v", got)
	}

	if err := c.Step(1.0 / 60); err != nil {
		t.Fatalf("step after rejected gravity: %v", err)
	}
	if c.Fatal() != nil || body.Translation().Y() >= 5 {
		t.Errorf("world should keep falling under the old gravity: %v", body.Translation())
	}
}

func TestGravityChangeAffectsNextStep(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})
	body, err := c.CreateBody(shape.NewBall(0.5, mat), mgl32.Vec3{0, 100, 0}, false)
	if err != nil {
		t.Fatal(err)
	}

	const dt = 0.02
	if err := c.Step(dt); err != nil {
		t.Fatal(err)
	}
	before := body.Linvel().Y()
	if math.Abs(float64(before)+9.81*dt) > 1e-5 {
		t.Fatalf("first step used wrong gravity: vy %f", before)
	}

	c.SetGravity(mgl32.Vec3{0, -20, 0})
	if body.Linvel().Y() != before {
		t.Fatal("setting gravity changed velocity before any step")
	}
	if err := c.Step(dt); err != nil {
		t.Fatal(err)
	}
	dv := body.Linvel().Y() - before
	if math.Abs(float64(dv)+20*dt) > 1e-5 {
		t.Errorf("expected dv %f, got %f", -20*dt, dv)
	}
}

func TestStepCountsTime(t *testing.T) {
	c := New(mgl32.Vec3{})
	for i := 0; i < 10; i++ {
		if err := c.Step(0.1); err != nil {
			t.Fatal(err)
		}
	}
	if c.Steps() != 10 {
		t.Errorf("expected 10 steps, got %d", c.Steps())
	}
	if math.Abs(c.Time()-1.0) > 1e-6 {
		t.Errorf("expected t=1.0, got %f", c.Time())
	}
	if c.LastStep() != 0.1 {
		t.Errorf("expected last step 0.1, got %f", c.LastStep())
	}
}

func TestFatalStepPoisons(t *testing.T) {
	c := New(mgl32.Vec3{0, -9.81, 0})
	body, err := c.CreateBody(shape.NewBall(0.5, mat), mgl32.Vec3{0, 5, 0}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Step(0.01); err != nil {
		t.Fatal(err)
	}

	body.SetLinvel(mgl32.Vec3{float32(math.NaN()), 0, 0}, true)
	err = c.Step(0.01)
	if !errors.Is(err, ErrSimulationFatal) {
		t.Fatalf("expected ErrSimulationFatal, got %v", err)
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) || fatal.Step != 1 {
		t.Errorf("expected fatal at step 1, got %+v", fatal)
	}

	body.SetLinvel(mgl32.Vec3{}, true)
	if again := c.Step(0.01); again != err {
		t.Errorf("poisoned controller should return the same error, got %v", again)
	}
	if c.Steps() != 1 {
		t.Errorf("fatal step must not count, steps=%d", c.Steps())
	}
	if c.Fatal() == nil {
		t.Error("Fatal() should report the failure")
	}
}
