package forcefield

import (
	"fmt"

	"github.com/san-kum/mdsim/internal/md"
)

// Named is implemented by evaluators that can describe themselves for run metadata.
type Named interface {
	Name() string
	Params() map[string]float64
}

type checked struct {
	inner md.ForceEvaluator
}

// Checked guards an evaluator against non-finite input and output.
func Checked(e md.ForceEvaluator) md.ForceEvaluator {
	if c, ok := e.(*checked); ok {
		return c
	}
	return &checked{inner: e}
}

func (c *checked) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	for i, p := range positions {
		if !md.IsFinite(p) {
			return 0, nil, fmt.Errorf("%w: position of particle %d is %v", md.ErrEvaluation, i, p)
		}
	}

	energy, forces, err := c.inner.Evaluate(positions)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", md.ErrEvaluation, err)
	}
	if len(forces) != len(positions) {
		return 0, nil, fmt.Errorf("%w: %w: %d forces for %d positions",
			md.ErrEvaluation, md.ErrDimensionMismatch, len(forces), len(positions))
	}
	if !isFinite(energy) {
		return 0, nil, fmt.Errorf("%w: potential energy is %g", md.ErrEvaluation, energy)
	}
	for i, f := range forces {
		if !md.IsFinite(f) {
			return 0, nil, fmt.Errorf("%w: force on particle %d is %v", md.ErrEvaluation, i, f)
		}
	}
	return energy, forces, nil
}

func (c *checked) Name() string {
	if n, ok := c.inner.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c.inner)
}

func (c *checked) Params() map[string]float64 {
	if n, ok := c.inner.(Named); ok {
		return n.Params()
	}
	return map[string]float64{}
}

func (c *checked) Box() [3]md.Vec3 {
	if b, ok := c.inner.(md.Boxed); ok {
		return b.Box()
	}
	return [3]md.Vec3{}
}
