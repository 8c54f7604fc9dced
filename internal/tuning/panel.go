// Package tuning adjusts world parameters between frames: a gravity panel
// with clamped sliders and a config-file watcher that feeds it.
package tuning

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/logging"
)

const (
	Min  = -10.0
	Max  = 10.0
	Step = 0.1
)

// GravityTuner is the setter surface the panel drives. Each axis has its own
// method so the panel never reaches into the world by field name.
type GravityTuner interface {
	SetGravityX(v float32)
	SetGravityY(v float32)
	SetGravityZ(v float32)
	Gravity() mgl32.Vec3
}

type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

type Panel struct {
	tuner GravityTuner
	log   *log.Logger
}

func NewPanel(t GravityTuner, l *log.Logger) *Panel {
	if l == nil {
		l = logging.Discard()
	}
	return &Panel{tuner: t, log: l}
}

// Clamp keeps v within the slider range. NaN maps to 0.
func Clamp(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return mgl32.Clamp(v, Min, Max)
}

// Snap rounds v to the slider step, then clamps.
func Snap(v float32) float32 {
	return Clamp(float32(math.Round(float64(v)/Step) * Step))
}

// Set applies v to one axis after clamping and returns the applied value.
func (p *Panel) Set(axis Axis, v float32) float32 {
	v = Clamp(v)
	switch axis {
	case X:
		p.tuner.SetGravityX(v)
	case Y:
		p.tuner.SetGravityY(v)
	case Z:
		p.tuner.SetGravityZ(v)
	}
	p.log.Debug("gravity axis", "axis", axis, "value", v)
	return v
}

// Nudge moves one axis by whole slider steps.
func (p *Panel) Nudge(axis Axis, steps int) float32 {
	cur := p.tuner.Gravity()[axis]
	return p.Set(axis, Snap(cur+float32(steps)*Step))
}

func (p *Panel) Apply(g mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{p.Set(X, g.X()), p.Set(Y, g.Y()), p.Set(Z, g.Z())}
}

func (p *Panel) Values() mgl32.Vec3 { return p.tuner.Gravity() }
