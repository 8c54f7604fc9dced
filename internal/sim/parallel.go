package sim

import (
	"context"
	"fmt"
	"sync"
)

// Factory builds the i-th independent driver of an ensemble.
type Factory func(i int) (*Driver, error)

// Ensemble runs headless drivers side by side. The instances share nothing,
// so each goroutine owns its world.
type Ensemble struct {
	factory Factory
	numRuns int
	frames  int
}

func NewEnsemble(factory Factory, numRuns, frames int) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, frames: frames}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			d, err := e.factory(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("instance %d: %w", idx, err)
				return
			}
			results[idx], errs[idx] = d.RunFrames(ctx, e.frames)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
