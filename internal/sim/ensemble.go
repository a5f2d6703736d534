package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Factory builds a fresh, fully independent simulation for one replica.
type Factory func(seed int64) (*Simulation, error)

// Ensemble runs independent replicas concurrently. Replica i is built with
// seed seedStart+i; replicas share no integrator, stream or state.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per replica in seed order. Replicas that fail leave
// their partial result in place; all failures are joined into the error.
func (e *Ensemble) Run(ctx context.Context, totalSteps, reportInterval int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			s, err := e.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("replica %d (seed %d): %w", idx, seed, err)
				return
			}

			results[idx], err = s.Run(ctx, totalSteps, reportInterval)
			if err != nil {
				errs[idx] = fmt.Errorf("replica %d (seed %d): %w", idx, seed, err)
			}
		}(i)
	}

	wg.Wait()
	return results, errors.Join(errs...)
}
