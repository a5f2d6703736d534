package reporters

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/mdsim/internal/md"
)

var csvHeader = []string{"step", "time", "potential_energy", "kinetic_energy", "total_energy", "temperature"}

// CSV writes reports as comma-separated rows and flushes after every row so a
// crashed run still leaves its reports on disk.
type CSV struct {
	w       *csv.Writer
	closer  io.Closer
	started bool
}

func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func CreateCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create csv: %w", err)
	}
	c := NewCSV(f)
	c.closer = f
	return c, nil
}

func (c *CSV) Report(r md.Report) error {
	if !c.started {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.started = true
	}
	if err := c.w.Write(ReportRecord(r)); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		err = errors.Join(err, c.closer.Close())
	}
	return err
}

// ReportRecord formats a report in csvHeader column order.
func ReportRecord(r md.Report) []string {
	return []string{
		strconv.Itoa(r.Step),
		strconv.FormatFloat(r.Time, 'g', -1, 64),
		strconv.FormatFloat(r.PotentialEnergy, 'g', -1, 64),
		strconv.FormatFloat(r.KineticEnergy, 'g', -1, 64),
		strconv.FormatFloat(r.TotalEnergy, 'g', -1, 64),
		strconv.FormatFloat(r.Temperature, 'g', -1, 64),
	}
}

// ParseRecord is the inverse of ReportRecord.
func ParseRecord(record []string) (md.Report, error) {
	if len(record) != len(csvHeader) {
		return md.Report{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(record))
	}
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return md.Report{}, fmt.Errorf("step: %w", err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		vals[i], err = strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return md.Report{}, fmt.Errorf("%s: %w", csvHeader[i+1], err)
		}
	}
	return md.Report{
		Step:            step,
		Time:            vals[0],
		PotentialEnergy: vals[1],
		KineticEnergy:   vals[2],
		TotalEnergy:     vals[3],
		Temperature:     vals[4],
	}, nil
}

// ReadCSV loads every report from a file written by CSV.
func ReadCSV(r io.Reader) ([]md.Report, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	reports := make([]md.Report, 0, len(records)-1)
	for i, rec := range records[1:] {
		rep, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
