package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"gonum.org/v1/gonum/stat"
)

type TemperatureStats struct {
	Samples           int
	Target            float64
	Mean              float64
	StdDev            float64
	StdErr            float64
	RelativeDeviation float64 // |Mean − Target| / Target
}

// Within reports whether the mean temperature is within tol (relative) of the target.
func (t *TemperatureStats) Within(tol float64) bool {
	return t.RelativeDeviation <= tol
}

// Equipartition summarises the reported temperatures after discarding the
// first skip reports as equilibration.
func Equipartition(reports []md.Report, target float64, skip int) (*TemperatureStats, error) {
	if !(target > 0) {
		return nil, fmt.Errorf("%w: target temperature must be positive, got %g", md.ErrInvalidParameter, target)
	}
	if skip < 0 {
		skip = 0
	}
	if len(reports)-skip < 2 {
		return nil, fmt.Errorf("need at least 2 reports after skipping %d, have %d", skip, len(reports))
	}

	temps := make([]float64, 0, len(reports)-skip)
	for _, r := range reports[skip:] {
		temps = append(temps, r.Temperature)
	}

	mean, std := stat.MeanStdDev(temps, nil)
	return &TemperatureStats{
		Samples:           len(temps),
		Target:            target,
		Mean:              mean,
		StdDev:            std,
		StdErr:            stat.StdErr(std, float64(len(temps))),
		RelativeDeviation: math.Abs(mean-target) / target,
	}, nil
}

func KineticTemperature(velocities []md.Vec3, masses []float64) (float64, error) {
	if len(velocities) != len(masses) {
		return 0, fmt.Errorf("%w: %d velocities for %d masses", md.ErrDimensionMismatch, len(velocities), len(masses))
	}
	return md.Temperature(md.KineticEnergy(velocities, masses), len(masses)), nil
}
