package forcefield

import "github.com/san-kum/mdsim/internal/md"

// DoubleWell places every coordinate in a bistable quartic well.
// U = Σ A (x² − B)² over all particles and axes; minima at ±sqrt(B).
type DoubleWell struct {
	A, B float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{A: 1.0, B: 1.0}
}

func (d *DoubleWell) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	energy := 0.0
	forces := make([]md.Vec3, len(positions))
	for i, p := range positions {
		ex, fx := d.axis(p.X)
		ey, fy := d.axis(p.Y)
		ez, fz := d.axis(p.Z)
		energy += ex + ey + ez
		forces[i] = md.Vec3{X: fx, Y: fy, Z: fz}
	}
	return energy, forces, nil
}

func (d *DoubleWell) axis(x float64) (energy, force float64) {
	s := x*x - d.B
	return d.A * s * s, -4 * d.A * x * s
}

func (d *DoubleWell) Name() string { return "doublewell" }

func (d *DoubleWell) Params() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B}
}
