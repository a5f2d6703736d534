package reporters

import "github.com/san-kum/mdsim/internal/md"

// Recorder keeps every report in memory.
type Recorder struct {
	Reports []md.Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(rep md.Report) error {
	r.Reports = append(r.Reports, rep)
	return nil
}

func (r *Recorder) Reset() { r.Reports = r.Reports[:0] }

func (r *Recorder) Temperatures() []float64 {
	return r.series(func(rep md.Report) float64 { return rep.Temperature })
}

func (r *Recorder) TotalEnergies() []float64 {
	return r.series(func(rep md.Report) float64 { return rep.TotalEnergy })
}

func (r *Recorder) PotentialEnergies() []float64 {
	return r.series(func(rep md.Report) float64 { return rep.PotentialEnergy })
}

func (r *Recorder) series(f func(md.Report) float64) []float64 {
	out := make([]float64, len(r.Reports))
	for i, rep := range r.Reports {
		out[i] = f(rep)
	}
	return out
}

// Trajectory keeps full frames in memory. Frames are deep copies.
type Trajectory struct {
	Frames []md.Frame
}

func NewTrajectory() *Trajectory {
	return &Trajectory{}
}

func (t *Trajectory) Report(md.Report) error { return nil }

func (t *Trajectory) ReportFrame(f md.Frame) error {
	f.Positions = md.CloneVecs(f.Positions)
	f.Velocities = md.CloneVecs(f.Velocities)
	t.Frames = append(t.Frames, f)
	return nil
}

// Positions returns the position snapshots of all frames.
func (t *Trajectory) Positions() [][]md.Vec3 {
	out := make([][]md.Vec3, len(t.Frames))
	for i, f := range t.Frames {
		out[i] = f.Positions
	}
	return out
}
