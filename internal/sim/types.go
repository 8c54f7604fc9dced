package sim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/rigidsync/internal/registry"
	"github.com/san-kum/rigidsync/internal/scene"
)

// MaxDelta bounds the timestep handed to the world, in seconds.
const MaxDelta = 0.1

// ErrStopped is returned by a Pacer to end Run cleanly.
var ErrStopped = errors.New("sim: stopped")

type State int32

const (
	Idle State = iota
	Stepping
	Syncing
	Rendering
)

func (s State) String() string {
	switch s {
	case Stepping:
		return "stepping"
	case Syncing:
		return "syncing"
	case Rendering:
		return "rendering"
	default:
		return "idle"
	}
}

type Stepper interface {
	Step(dt float32) error
}

type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera) error
}

// Resizer is implemented by renderers that track the surface size.
type Resizer interface {
	Resize(width, height int)
}

type NopRenderer struct{}

func (NopRenderer) Render(*scene.Scene, *scene.Camera) error { return nil }

// Pacer waits for the host's next display frame. Returning ErrStopped ends
// Run without error.
type Pacer func(ctx context.Context) error

// Frame describes one completed cycle.
type Frame struct {
	Index    int
	Delta    float32 // clamped step handed to the world
	Elapsed  float64 // measured wall time, seconds
	Time     float64 // simulated time after the step
	Registry *registry.Registry
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Result struct {
	Frames  int
	Time    float64
	Metrics map[string]float64
}

// ClampDelta maps an elapsed wall time to a step in [0, MaxDelta]. NaN and
// negative input give 0.
func ClampDelta(seconds float64) float32 {
	return clampDelta(seconds, MaxDelta)
}

func clampDelta(seconds float64, limit float32) float32 {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if seconds >= float64(limit) {
		return limit
	}
	return float32(seconds)
}
