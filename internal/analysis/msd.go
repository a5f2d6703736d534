package analysis

import (
	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeanSquaredDisplacement returns the MSD for lags 1..len(frames)-1 (in
// frames), averaged over particles and over every time origin. Positions are
// assumed unwrapped.
func MeanSquaredDisplacement(frames []md.Frame) []float64 {
	if len(frames) < 2 {
		return nil
	}
	n := len(frames[0].Positions)
	if n == 0 {
		return nil
	}

	msd := make([]float64, len(frames)-1)
	counts := make([]int, len(frames)-1)
	for i := 0; i < len(frames)-1; i++ {
		for j := i + 1; j < len(frames); j++ {
			a, b := frames[i].Positions, frames[j].Positions
			sum := 0.0
			for p := 0; p < n && p < len(b); p++ {
				sum += r3.Norm2(r3.Sub(b[p], a[p]))
			}
			msd[j-i-1] += sum / float64(n)
			counts[j-i-1]++
		}
	}
	for k := range msd {
		msd[k] /= float64(counts[k])
	}
	return msd
}

// DiffusionCoefficient fits MSD(t) = 6 D t through the origin by least
// squares, with lag k at time k·dt.
func DiffusionCoefficient(msd []float64, dt float64) float64 {
	var num, den float64
	for k, v := range msd {
		t := float64(k+1) * dt
		num += t * v
		den += t * t
	}
	if den == 0 {
		return 0
	}
	return num / den / 6
}
