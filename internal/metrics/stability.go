package metrics

import (
	"github.com/san-kum/rigidsync/internal/sim"
)

// Stability is the fraction of frames in which every bound body stayed
// within threshold of the origin. Bodies tunnelling through the floor or
// thrown out of the scene lower it.
type Stability struct {
	name       string
	threshold  float32
	violations int
	samples    int
}

func NewStability(threshold float32) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	s.samples++
	if f.Registry == nil {
		return
	}
	for _, b := range f.Registry.Bindings() {
		if b.Body.Translation().Len() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
