package analysis

import (
	"github.com/san-kum/rigidsync/internal/storage"
)

// MinImpactSpeed ignores sign flips of the vertical velocity slower than
// this, such as jitter while resting.
const MinImpactSpeed = 0.5

// Bounce is one observed rebound: the vertical speed just before and just
// after the velocity turned upward.
type Bounce struct {
	Frame   int
	Time    float64
	Height  float64
	Impact  float64
	Rebound float64
}

// Restitution is the observed rebound-to-impact speed ratio.
func (b Bounce) Restitution() float64 {
	if b.Impact == 0 {
		return 0
	}
	return b.Rebound / b.Impact
}

// Bounces scans one body's trace for downward-to-upward velocity flips.
func Bounces(tr *storage.Trace, body string) []Bounce {
	samples := tr.ForBody(body)
	var out []Bounce
	for i := 1; i < len(samples); i++ {
		before := -float64(samples[i-1].Velocity.Y())
		after := float64(samples[i].Velocity.Y())
		if before < MinImpactSpeed || after <= 0 {
			continue
		}
		out = append(out, Bounce{
			Frame:   samples[i].Frame,
			Time:    samples[i].Time,
			Height:  float64(samples[i].Position.Y()),
			Impact:  before,
			Rebound: after,
		})
	}
	return out
}

// MeanRestitution averages the observed restitution over bounces.
func MeanRestitution(bounces []Bounce) float64 {
	if len(bounces) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bounces {
		sum += b.Restitution()
	}
	return sum / float64(len(bounces))
}
