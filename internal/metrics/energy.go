package metrics

import (
	"github.com/san-kum/rigidsync/internal/physics"
	"github.com/san-kum/rigidsync/internal/sim"
)

// KineticEnergy averages the total kinetic energy of the bound bodies over
// the observed frames.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f sim.Frame) {
	e.total += TotalEnergy(f)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// PeakEnergy keeps the largest per-frame kinetic energy. A restitution above
// one shows up here as growth over time.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(f sim.Frame) {
	if v := TotalEnergy(f); v > e.peak {
		e.peak = v
	}
}

func (e *PeakEnergy) Value() float64 { return e.peak }
func (e *PeakEnergy) Reset()         { e.peak = 0 }

// TotalEnergy sums the kinetic energy of every bound body in the frame.
func TotalEnergy(f sim.Frame) float64 {
	if f.Registry == nil {
		return 0
	}
	var sum float64
	for _, b := range f.Registry.Bindings() {
		sum += float64(bodyEnergy(b.Body))
	}
	return sum
}

func bodyEnergy(b *physics.RigidBody) float32 {
	if b == nil {
		return 0
	}
	return b.KineticEnergy()
}
