package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/reporters"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	reportsFile  = "reports.csv"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusCancelled = "cancelled"
	StatusDiverged  = "diverged"
	StatusFailed    = "failed"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	CreatedAt   time.Time          `json:"created_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Seed        int64              `json:"seed"`
	ForceField  string             `json:"force_field"`
	Integrator  string             `json:"integrator"`
	Particles   int                `json:"particles"`
	Temperature float64            `json:"temperature"`
	Friction    float64            `json:"friction"`
	Timestep    float64            `json:"timestep"`
	TotalSteps  int                `json:"total_steps"`
	StepsTaken  int                `json:"steps_taken"`
	FinalTime   float64            `json:"final_time"`
	Status      string             `json:"status"`
	StopReason  string             `json:"stop_reason,omitempty"`
	Error       string             `json:"error,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config"`
}

// Status classifies the outcome of a run from its result and error.
func Status(result *sim.Result, runErr error) string {
	switch {
	case errors.Is(runErr, md.ErrDiverged):
		return StatusDiverged
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		return StatusCancelled
	case runErr != nil:
		return StatusFailed
	case result != nil && result.Stopped:
		return StatusStopped
	default:
		return StatusCompleted
	}
}

// NewRunID returns a fresh, sortable id of the form <model>_<xid>.
func NewRunID(model string) string {
	return fmt.Sprintf("%s_%s", model, xid.New().String())
}

// Save writes a run directory under a new run id. A partial result and the
// run error are recorded as well, so failed runs can still be inspected.
func (s *Store) Save(model string, cfg *config.Config, result *sim.Result, runErr error) (string, error) {
	return s.SaveRun(NewRunID(model), model, cfg, result, runErr)
}

// SaveRun is Save with an id chosen by the caller, for runs whose id is
// needed before they start.
func (s *Store) SaveRun(runID, model string, cfg *config.Config, result *sim.Result, runErr error) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("config is required")
	}
	if result == nil {
		result = &sim.Result{}
	}

	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	now := time.Now()
	meta := RunMetadata{
		ID:          runID,
		Model:       model,
		CreatedAt:   now.Add(-result.Elapsed),
		FinishedAt:  now,
		Seed:        cfg.Seed,
		ForceField:  cfg.ForceField.Kind,
		Integrator:  cfg.Integrator,
		Particles:   cfg.NumParticles(),
		Temperature: cfg.Temperature,
		Friction:    cfg.Friction,
		Timestep:    cfg.Timestep,
		TotalSteps:  cfg.TotalSteps,
		StepsTaken:  result.StepsTaken,
		FinalTime:   result.FinalTime,
		Status:      Status(result, runErr),
		StopReason:  result.StopReason,
		Metrics:     finiteMetrics(result.Metrics),
		Config:      cfg,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	w, err := reporters.CreateCSV(filepath.Join(runDir, reportsFile))
	if err != nil {
		return "", err
	}
	for _, r := range result.Reports {
		if err := w.Report(r); err != nil {
			w.Close()
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns all runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadReports(runID string) ([]md.Report, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, reportsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reports, err := reporters.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if reports == nil {
		reports = []md.Report{}
	}
	return reports, nil
}

type ExportData struct {
	Run     *RunMetadata `json:"run"`
	Reports []md.Report  `json:"reports"`
}

// ExportJSON writes the metadata and every report of a run as one JSON
// document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	reports, err := s.LoadReports(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Reports: reports})
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSON has no NaN or Inf.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
