package forcefield

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"
)

// Below this many bodies the exact pair sum is cheaper than building the tree.
const barnesHutThreshold = 32

// Gravity is softened Newtonian attraction between particles of the given masses.
// Forces use a Barnes-Hut octree when Theta > 0 and the system is large enough;
// the potential energy is always the exact pair sum.
type Gravity struct {
	G         float64
	Softening float64
	Theta     float64
	Masses    []float64
}

func NewGravity(masses []float64) *Gravity {
	return &Gravity{
		G:         1.0,
		Softening: 0.01,
		Theta:     0.5,
		Masses:    append([]float64(nil), masses...),
	}
}

type body struct {
	pos  r3.Vec
	mass float64
}

func (b *body) Coord3() r3.Vec { return b.pos }
func (b *body) Mass() float64  { return b.mass }

func (g *Gravity) Evaluate(positions []md.Vec3) (float64, []md.Vec3, error) {
	n := len(positions)
	if n != len(g.Masses) {
		return 0, nil, fmt.Errorf("%w: gravity has %d masses, got %d positions", md.ErrDimensionMismatch, len(g.Masses), n)
	}

	if g.Theta <= 0 || n < barnesHutThreshold {
		energy, forces := g.exact(positions)
		return energy, forces, nil
	}

	energy := g.potential(positions)
	forces := make([]md.Vec3, n)
	bodies := make([]barneshut.Particle3, n)
	for i, p := range positions {
		bodies[i] = &body{pos: p, mass: g.Masses[i]}
	}
	vol, err := barneshut.NewVolume(bodies)
	if err != nil {
		return 0, nil, fmt.Errorf("barnes-hut: %w", err)
	}
	for i, b := range bodies {
		forces[i] = vol.ForceOn(b, g.Theta, g.force)
	}
	return energy, forces, nil
}

// force is the softened pull on p1 towards p2; v points from p1 to p2.
func (g *Gravity) force(_, _ barneshut.Particle3, m1, m2 float64, v r3.Vec) r3.Vec {
	d2 := r3.Norm2(v) + g.Softening*g.Softening
	return r3.Scale(g.G*m1*m2/(d2*math.Sqrt(d2)), v)
}

func (g *Gravity) exact(positions []md.Vec3) (float64, []md.Vec3) {
	energy := 0.0
	forces := make([]md.Vec3, len(positions))
	eps2 := g.Softening * g.Softening

	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			d := r3.Sub(positions[j], positions[i])
			d2 := r3.Norm2(d) + eps2
			r := math.Sqrt(d2)
			energy -= g.G * g.Masses[i] * g.Masses[j] / r

			f := r3.Scale(g.G*g.Masses[i]*g.Masses[j]/(d2*r), d)
			forces[i] = r3.Add(forces[i], f)
			forces[j] = r3.Sub(forces[j], f)
		}
	}
	return energy, forces
}

func (g *Gravity) potential(positions []md.Vec3) float64 {
	energy := 0.0
	eps2 := g.Softening * g.Softening
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			d2 := r3.Norm2(r3.Sub(positions[j], positions[i])) + eps2
			energy -= g.G * g.Masses[i] * g.Masses[j] / math.Sqrt(d2)
		}
	}
	return energy
}

func (g *Gravity) Name() string { return "gravity" }

func (g *Gravity) Params() map[string]float64 {
	return map[string]float64{"G": g.G, "softening": g.Softening, "theta": g.Theta}
}
