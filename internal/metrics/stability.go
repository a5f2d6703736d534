package metrics

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
)

// Stability is the fraction of reports whose temperature is finite and below
// a ceiling. A value below one usually means the timestep is too large.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Report(r md.Report) error {
	s.samples++
	t := r.Temperature
	if math.IsNaN(t) || math.IsInf(t, 0) || t > s.threshold {
		s.violations++
	}
	return nil
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
