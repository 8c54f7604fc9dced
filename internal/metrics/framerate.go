package metrics

import (
	"github.com/san-kum/rigidsync/internal/sim"
)

// FrameRate counts cycles per second of wall time over one-second windows,
// the figure shown by the stats overlay.
type FrameRate struct {
	name    string
	window  float64
	frames  int
	elapsed float64
	fps     float64
	total   int
}

func NewFrameRate() *FrameRate {
	return &FrameRate{name: "fps", window: 1}
}

func (r *FrameRate) Name() string { return r.name }

func (r *FrameRate) Observe(f sim.Frame) {
	r.total++
	r.frames++
	if f.Elapsed > 0 {
		r.elapsed += f.Elapsed
	}
	if r.elapsed >= r.window {
		r.fps = float64(r.frames) / r.elapsed
		r.frames = 0
		r.elapsed = 0
	}
}

// Value is the rate of the last full window, or of the partial one before
// the first window closes.
func (r *FrameRate) Value() float64 {
	if r.fps == 0 && r.elapsed > 0 {
		return float64(r.frames) / r.elapsed
	}
	return r.fps
}

// Frames is the number of cycles seen since the last Reset.
func (r *FrameRate) Frames() int { return r.total }

func (r *FrameRate) Reset() {
	r.frames = 0
	r.elapsed = 0
	r.fps = 0
	r.total = 0
}
