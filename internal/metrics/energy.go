package metrics

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
)

// EnergyDrift tracks the largest relative deviation of the total energy from
// the first reported value. It is meaningful for weakly damped runs only.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Report(r md.Report) error {
	if e.samples == 0 {
		e.initial = r.TotalEnergy
	}
	e.samples++

	diff := math.Abs(r.TotalEnergy - e.initial)
	if e.initial != 0 {
		diff /= math.Abs(e.initial)
	}
	if diff > e.maxDrift || math.IsNaN(diff) {
		e.maxDrift = diff
	}
	return nil
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
