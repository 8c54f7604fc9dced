package metrics

import (
	"github.com/san-kum/rigidsync/internal/sim"
)

// SleepRatio reports the share of bound bodies asleep in the last frame.
type SleepRatio struct {
	name  string
	ratio float64
}

func NewSleepRatio() *SleepRatio {
	return &SleepRatio{name: "sleep_ratio"}
}

func (s *SleepRatio) Name() string { return s.name }

func (s *SleepRatio) Observe(f sim.Frame) {
	if f.Registry == nil || f.Registry.Len() == 0 {
		s.ratio = 0
		return
	}
	asleep := 0
	for _, b := range f.Registry.Bindings() {
		if b.Body.IsSleeping() {
			asleep++
		}
	}
	s.ratio = float64(asleep) / float64(f.Registry.Len())
}

func (s *SleepRatio) Value() float64 { return s.ratio }
func (s *SleepRatio) Reset()         { s.ratio = 0 }
