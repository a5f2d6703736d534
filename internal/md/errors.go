package md

import (
	"errors"
	"fmt"
)

// Domain errors for integration and reporting.
var (
	// ErrInvalidParameter indicates a non-positive or non-finite mass, temperature,
	// friction, timestep or interval.
	ErrInvalidParameter = errors.New("md: invalid parameter")

	// ErrDimensionMismatch indicates a position/velocity slice whose length differs
	// from the particle count.
	ErrDimensionMismatch = errors.New("md: dimension mismatch between input and particle count")

	// ErrEvaluation indicates the force evaluator saw or produced NaN/Inf values.
	ErrEvaluation = errors.New("md: force evaluation produced non-finite values")

	// ErrDiverged indicates an integration step could not be completed.
	ErrDiverged = errors.New("md: integration diverged")
)

// DivergedError reports the last consistent point of a failed integration.
// Step and Time describe the state that is still held by the integrator.
type DivergedError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("%v after step %d (t=%.4f ps): %v", ErrDiverged, e.Step, e.Time, e.Wrapped)
}

func (e *DivergedError) Unwrap() []error {
	return []error{ErrDiverged, e.Wrapped}
}
