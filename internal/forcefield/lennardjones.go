package forcefield

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/spatial/r3"
)

// Argon-like defaults.
const (
	DefaultEpsilon = 0.996 // kJ/mol
	DefaultSigma   = 0.34  // nm

	// Systems smaller than this are summed on the calling goroutine.
	parallelThreshold = 64
)

// LennardJones is the 12-6 pair potential
// U(r) = 4ε[(σ/r)^12 − (σ/r)^6], shifted to zero at Cutoff when Cutoff > 0.
// Non-zero components of Periodic are orthorhombic box edges wrapped with
// the minimum-image convention.
type LennardJones struct {
	Epsilon  float64
	Sigma    float64
	Cutoff   float64
	Periodic md.Vec3
	Workers  int
}

func NewLennardJones(epsilon, sigma, cutoff float64) *LennardJones {
	return &LennardJones{Epsilon: epsilon, Sigma: sigma, Cutoff: cutoff}
}

func (lj *LennardJones) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	n := len(positions)
	forces := make([]md.Vec3, n)

	var (
		energy float64
		err    error
	)
	if n < parallelThreshold {
		energy, err = lj.evaluateSerial(positions, forces)
	} else {
		energy, err = lj.evaluateParallel(positions, forces)
	}
	if err != nil {
		return 0, nil, err
	}
	return energy, forces, nil
}

func coincident(i, j int) error {
	return fmt.Errorf("%w: particles %d and %d coincide", md.ErrEvaluation, i, j)
}

func (lj *LennardJones) evaluateSerial(pos []md.Vec3, forces []md.Vec3) (float64, error) {
	energy := 0.0
	rc2, shift := lj.cutoff()

	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			d := lj.separation(pos[i], pos[j])
			r2 := r3.Norm2(d)
			if r2 == 0 {
				return 0, coincident(i, j)
			}
			if rc2 > 0 && r2 >= rc2 {
				continue
			}
			e, fScale := lj.pair(r2)
			energy += e - shift
			f := r3.Scale(fScale, d)
			forces[i] = r3.Add(forces[i], f)
			forces[j] = r3.Sub(forces[j], f)
		}
	}
	return energy, nil
}

// evaluateParallel gives every chunk of particles the full j loop so that each
// force is written by exactly one goroutine. Pair energies are counted on j > i.
func (lj *LennardJones) evaluateParallel(pos []md.Vec3, forces []md.Vec3) (float64, error) {
	n := len(pos)
	rc2, shift := lj.cutoff()
	minChunk := parallelThreshold / 4
	energies := make([]float64, numChunks(n, minChunk, lj.Workers))

	err := parallelFor(n, minChunk, lj.Workers, func(chunk, start, end int) error {
		local := 0.0
		for i := start; i < end; i++ {
			var fi md.Vec3
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				d := lj.separation(pos[i], pos[j])
				r2 := r3.Norm2(d)
				if r2 == 0 {
					return coincident(min(i, j), max(i, j))
				}
				if rc2 > 0 && r2 >= rc2 {
					continue
				}
				e, fScale := lj.pair(r2)
				if j > i {
					local += e - shift
				}
				fi = r3.Add(fi, r3.Scale(fScale, d))
			}
			forces[i] = fi
		}
		energies[chunk] = local
		return nil
	})
	if err != nil {
		return 0, err
	}

	energy := 0.0
	for _, e := range energies {
		energy += e
	}
	return energy, nil
}

// pair returns the pair energy and the factor that turns the separation
// vector r_i − r_j into the force on i.
func (lj *LennardJones) pair(r2 float64) (energy, forceScale float64) {
	s2 := lj.Sigma * lj.Sigma / r2
	s6 := s2 * s2 * s2
	s12 := s6 * s6
	energy = 4 * lj.Epsilon * (s12 - s6)
	forceScale = 24 * lj.Epsilon * (2*s12 - s6) / r2
	return energy, forceScale
}

func (lj *LennardJones) cutoff() (rc2, shift float64) {
	if lj.Cutoff <= 0 {
		return 0, 0
	}
	rc2 = lj.Cutoff * lj.Cutoff
	shift, _ = lj.pair(rc2)
	return rc2, shift
}

func (lj *LennardJones) separation(a, b md.Vec3) md.Vec3 {
	d := r3.Sub(a, b)
	if lj.Periodic.X > 0 {
		d.X -= lj.Periodic.X * math.Round(d.X/lj.Periodic.X)
	}
	if lj.Periodic.Y > 0 {
		d.Y -= lj.Periodic.Y * math.Round(d.Y/lj.Periodic.Y)
	}
	if lj.Periodic.Z > 0 {
		d.Z -= lj.Periodic.Z * math.Round(d.Z/lj.Periodic.Z)
	}
	return d
}

// MinimumDistance is the pair separation at the bottom of the well, 2^(1/6)σ.
func (lj *LennardJones) MinimumDistance() float64 {
	return math.Pow(2, 1.0/6.0) * lj.Sigma
}

func (lj *LennardJones) Box() [3]md.Vec3 {
	return [3]md.Vec3{
		{X: lj.Periodic.X},
		{Y: lj.Periodic.Y},
		{Z: lj.Periodic.Z},
	}
}

func (lj *LennardJones) Name() string { return "lj" }

func (lj *LennardJones) Params() map[string]float64 {
	return map[string]float64{
		"epsilon": lj.Epsilon,
		"sigma":   lj.Sigma,
		"cutoff":  lj.Cutoff,
	}
}
