package storage

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/scene"
	"github.com/san-kum/rigidsync/internal/sim"
)

// Sample is one body's state at the end of one frame.
type Sample struct {
	Frame    int
	Time     float64
	Body     string
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Sleeping bool
}

type Trace struct {
	Samples []Sample
}

// Bodies lists body names in order of first appearance.
func (t *Trace) Bodies() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range t.Samples {
		if !seen[s.Body] {
			seen[s.Body] = true
			names = append(names, s.Body)
		}
	}
	return names
}

func (t *Trace) ForBody(name string) []Sample {
	var out []Sample
	for _, s := range t.Samples {
		if s.Body == name {
			out = append(out, s)
		}
	}
	return out
}

// Heights returns the time and height series of one body.
func (t *Trace) Heights(name string) ([]float64, []float64) {
	samples := t.ForBody(name)
	times := make([]float64, len(samples))
	heights := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		heights[i] = float64(s.Position.Y())
	}
	return times, heights
}

func (t *Trace) Frames() int {
	if len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Frame + 1
}

// Recorder is a frame observer that appends every bound body's state to a
// trace. Stride > 1 keeps one frame in Stride.
type Recorder struct {
	Stride int
	trace  Trace
}

func NewRecorder(stride int) *Recorder {
	return &Recorder{Stride: max(stride, 1)}
}

func (r *Recorder) OnFrame(f sim.Frame) {
	if f.Registry == nil || f.Index%r.Stride != 0 {
		return
	}
	f.Registry.ForEach(func(node *scene.Node, body *physics.RigidBody) {
		r.trace.Samples = append(r.trace.Samples, Sample{
			Frame:    f.Index,
			Time:     f.Time,
			Body:     node.Name,
			Position: body.Translation(),
			Velocity: body.Linvel(),
			Sleeping: body.IsSleeping(),
		})
	})
}

func (r *Recorder) Trace() *Trace { return &r.trace }
