package reporters

import (
	"fmt"
	"io"

	"github.com/san-kum/mdsim/internal/md"
)

// Console prints one fixed-width row per report, with a header before the first.
type Console struct {
	w             io.Writer
	headerWritten bool
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Report(r md.Report) error {
	if !c.headerWritten {
		if _, err := fmt.Fprintf(c.w, "%10s %12s %16s %16s %16s %12s\n",
			"Step", "Time(ps)", "Potential", "Kinetic", "Total", "Temp(K)"); err != nil {
			return err
		}
		c.headerWritten = true
	}
	_, err := fmt.Fprintf(c.w, "%10d %12.4f %16.4f %16.4f %16.4f %12.2f\n",
		r.Step, r.Time, r.PotentialEnergy, r.KineticEnergy, r.TotalEnergy, r.Temperature)
	return err
}
