package forcefield

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/spatial/r3"
)

// BondChain connects consecutive particles with harmonic bonds of rest length R0.
// U = Σ ½ K (|x_{i+1} − x_i| − R0)²
type BondChain struct {
	K  float64
	R0 float64
}

func NewBondChain(k, r0 float64) *BondChain {
	return &BondChain{K: k, R0: r0}
}

func (c *BondChain) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	energy := 0.0
	forces := make([]md.Vec3, len(positions))

	for i := 0; i+1 < len(positions); i++ {
		d := r3.Sub(positions[i+1], positions[i])
		r := r3.Norm(d)
		stretch := r - c.R0
		energy += 0.5 * c.K * stretch * stretch

		// r == 0 with R0 > 0 has no defined bond direction and yields NaN,
		// which Checked reports.
		var f md.Vec3
		if c.R0 == 0 {
			f = r3.Scale(-c.K, d)
		} else {
			f = r3.Scale(-c.K*stretch/r, d)
		}
		forces[i+1] = r3.Add(forces[i+1], f)
		forces[i] = r3.Sub(forces[i], f)
	}
	return energy, forces, nil
}

// Line lays n particles along x with the rest spacing.
func (c *BondChain) Line(n int) []md.Vec3 {
	spacing := c.R0
	if spacing == 0 {
		spacing = 0.1
	}
	pos := make([]md.Vec3, n)
	offset := 0.5 * float64(n-1) * spacing
	for i := range pos {
		pos[i] = md.Vec3{X: float64(i)*spacing - offset}
	}
	return pos
}

func (c *BondChain) Name() string { return "chain" }

func (c *BondChain) Params() map[string]float64 {
	return map[string]float64{"k": c.K, "r0": c.R0}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
