package forcefield

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/spatial/r3"
)

const DefaultStiffness = 100.0 // kJ/(mol·nm²)

// Harmonic ties every particle to its own center with an isotropic spring.
// U = Σ ½ k_i |x_i − c_i|²
type Harmonic struct {
	K      []float64
	Center []md.Vec3
}

func NewHarmonic(n int, k float64) *Harmonic {
	ks := make([]float64, n)
	for i := range ks {
		ks[i] = k
	}
	return &Harmonic{K: ks}
}

func (h *Harmonic) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	if len(positions) != len(h.K) {
		return 0, nil, fmt.Errorf("%w: harmonic has %d springs, got %d positions", md.ErrDimensionMismatch, len(h.K), len(positions))
	}
	if h.Center != nil && len(h.Center) != len(h.K) {
		return 0, nil, fmt.Errorf("%w: harmonic has %d springs and %d centers", md.ErrDimensionMismatch, len(h.K), len(h.Center))
	}

	energy := 0.0
	forces := make([]md.Vec3, len(positions))
	for i, p := range positions {
		d := p
		if h.Center != nil {
			d = r3.Sub(p, h.Center[i])
		}
		energy += 0.5 * h.K[i] * r3.Norm2(d)
		forces[i] = r3.Scale(-h.K[i], d)
	}
	return energy, forces, nil
}

// AngularFrequency returns sqrt(k_i/m) for particle i.
func (h *Harmonic) AngularFrequency(i int, mass float64) float64 {
	return math.Sqrt(h.K[i] / mass)
}

func (h *Harmonic) Name() string { return "harmonic" }

func (h *Harmonic) Params() map[string]float64 {
	k := 0.0
	if len(h.K) > 0 {
		k = h.K[0]
	}
	return map[string]float64{"k": k, "particles": float64(len(h.K))}
}
