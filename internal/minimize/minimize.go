// Package minimize relaxes particle positions to a local potential-energy
// minimum before dynamics starts. It flattens positions into a coordinate
// vector and drives gonum's L-BFGS implementation.
package minimize

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/forcefield"
	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/optimize"
)

const (
	DefaultTolerance     = 10.0 // kJ/(mol·nm)
	DefaultMaxIterations = 0    // until converged
)

type Settings struct {
	// MaxIterations bounds the number of L-BFGS major iterations; 0 means no limit.
	MaxIterations int
	// Tolerance is the largest force component, in kJ/(mol·nm), accepted as converged.
	Tolerance float64
}

func (s Settings) Validate() error {
	if s.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must be non-negative, got %d", md.ErrInvalidParameter, s.MaxIterations)
	}
	if !(s.Tolerance > 0) || math.IsInf(s.Tolerance, 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", md.ErrInvalidParameter, s.Tolerance)
	}
	return nil
}

type Result struct {
	Positions     []md.Vec3
	InitialEnergy float64
	FinalEnergy   float64
	MaxForce      float64
	Iterations    int
	Evaluations   int
	Status        string
}

// Converged reports whether the largest force component is within tolerance.
func (r *Result) Converged(tolerance float64) bool {
	return r.MaxForce <= tolerance
}

// objective adapts a force evaluator to gonum's Func/Grad pair. The last
// evaluation is cached because L-BFGS asks for both at the same point.
type objective struct {
	ctx  context.Context
	eval md.ForceEvaluator

	x      []float64
	energy float64
	forces []md.Vec3
	valid  bool
	calls  int
	err    error
}

func (o *objective) at(x []float64) bool {
	if o.valid && len(o.x) == len(x) {
		for i := range x {
			if o.x[i] != x[i] {
				return o.evaluate(x)
			}
		}
		return true
	}
	return o.evaluate(x)
}

func (o *objective) evaluate(x []float64) bool {
	o.calls++
	energy, forces, err := o.eval.Evaluate(unflatten(x))
	if err != nil {
		// A bad trial point reads as +Inf so the line search backs off. The
		// accepted point is checked again once L-BFGS returns.
		if !errors.Is(err, md.ErrEvaluation) && o.err == nil {
			o.err = err
		}
		o.valid = false
		return false
	}
	o.x = append(o.x[:0], x...)
	o.energy = energy
	o.forces = forces
	o.valid = true
	return true
}

func (o *objective) Func(x []float64) float64 {
	if !o.at(x) {
		return math.Inf(1)
	}
	return o.energy
}

func (o *objective) Grad(grad, x []float64) {
	if !o.at(x) {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	for i, f := range o.forces {
		grad[3*i] = -f.X
		grad[3*i+1] = -f.Y
		grad[3*i+2] = -f.Z
	}
}

func (o *objective) Status() (optimize.Status, error) {
	if o.err != nil {
		return optimize.Failure, o.err
	}
	if err := o.ctx.Err(); err != nil {
		return optimize.Failure, err
	}
	return optimize.NotTerminated, nil
}

// Run minimizes the potential energy of eval starting from positions. The
// input slice is not modified.
func Run(ctx context.Context, eval md.ForceEvaluator, positions []md.Vec3, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: nothing to minimize", md.ErrInvalidParameter)
	}

	checked := forcefield.Checked(eval)
	e0, f0, err := checked.Evaluate(positions)
	if err != nil {
		return nil, fmt.Errorf("initial configuration: %w", err)
	}

	res := &Result{
		Positions:     md.CloneVecs(positions),
		InitialEnergy: e0,
		FinalEnergy:   e0,
		MaxForce:      maxComponent(f0),
		Evaluations:   1,
		Status:        optimize.GradientThreshold.String(),
	}
	if res.MaxForce <= settings.Tolerance {
		return res, nil
	}

	obj := &objective{ctx: ctx, eval: checked}
	problem := optimize.Problem{
		Func:   obj.Func,
		Grad:   obj.Grad,
		Status: obj.Status,
	}
	opts := &optimize.Settings{
		GradientThreshold: settings.Tolerance,
		MajorIterations:   settings.MaxIterations,
	}

	out, err := optimize.Minimize(problem, flatten(positions), opts, &optimize.LBFGS{})
	res.Evaluations += obj.calls

	switch {
	case obj.err != nil:
		return nil, obj.err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case out == nil:
		return nil, fmt.Errorf("minimize: %w", err)
	}

	// Line searches often stall within rounding of the minimum; keep the
	// best point found as long as it is not uphill of the start.
	if err != nil && !(out.F <= e0) {
		return nil, fmt.Errorf("minimize: %w", err)
	}

	final := unflatten(out.X)
	energy, forces, err := checked.Evaluate(final)
	if err != nil {
		return nil, fmt.Errorf("minimized configuration: %w", err)
	}

	res.Positions = final
	res.FinalEnergy = energy
	res.MaxForce = maxComponent(forces)
	res.Iterations = out.MajorIterations
	res.Status = out.Status.String()
	return res, nil
}

func flatten(positions []md.Vec3) []float64 {
	x := make([]float64, 3*len(positions))
	for i, p := range positions {
		x[3*i], x[3*i+1], x[3*i+2] = p.X, p.Y, p.Z
	}
	return x
}

func unflatten(x []float64) []md.Vec3 {
	pos := make([]md.Vec3, len(x)/3)
	for i := range pos {
		pos[i] = md.Vec3{X: x[3*i], Y: x[3*i+1], Z: x[3*i+2]}
	}
	return pos
}

func maxComponent(forces []md.Vec3) float64 {
	m := 0.0
	for _, f := range forces {
		m = math.Max(m, math.Max(math.Abs(f.X), math.Max(math.Abs(f.Y), math.Abs(f.Z))))
	}
	return m
}
