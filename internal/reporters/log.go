package reporters

import (
	"github.com/rs/zerolog"

	"github.com/san-kum/mdsim/internal/md"
)

// Log emits one structured event per report.
type Log struct {
	log   zerolog.Logger
	level zerolog.Level
}

func NewLog(log zerolog.Logger, level zerolog.Level) *Log {
	return &Log{log: log, level: level}
}

func (l *Log) Report(r md.Report) error {
	l.log.WithLevel(l.level).
		Int("step", r.Step).
		Float64("time", r.Time).
		Float64("potential_energy", r.PotentialEnergy).
		Float64("kinetic_energy", r.KineticEnergy).
		Float64("total_energy", r.TotalEnergy).
		Float64("temperature", r.Temperature).
		Msg("state")
	return nil
}
