package world

import (
	"errors"
	"fmt"
)

// ErrSimulationFatal indicates the solver broke an internal invariant. The
// world cannot be advanced afterwards.
var ErrSimulationFatal = errors.New("world: simulation fatal")

// FatalError records where the world was when the solver failed.
type FatalError struct {
	Step  int
	Time  float64
	Cause any
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.4fs): %v", ErrSimulationFatal, e.Step, e.Time, e.Cause)
}

func (e *FatalError) Unwrap() error {
	return ErrSimulationFatal
}
