package reporters

import (
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/san-kum/mdsim/internal/md"
)

const defaultBatchSize = 1000

// SQLite buffers reports and writes them to a reports table in batches, one
// transaction per batch. Rows carry a run id so several runs can share a file.
type SQLite struct {
	db        *sql.DB
	runID     string
	batch     []md.Report
	batchSize int
	closed    bool
}

// OpenSQLite opens or creates the database at path. An empty runID gets a
// fresh xid.
func OpenSQLite(path, runID string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return NewSQLiteWithDB(db, runID)
}

func NewSQLiteWithDB(db *sql.DB, runID string) (*SQLite, error) {
	if runID == "" {
		runID = xid.New().String()
	}

	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS reports (
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	time REAL,
	potential_energy REAL,
	kinetic_energy REAL,
	total_energy REAL,
	temperature REAL
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create reports table: %w", err)
	}

	s := &SQLite{db: db, runID: runID, batchSize: defaultBatchSize}
	atexit.Register(func() { _ = s.Close() })
	return s, nil
}

func (s *SQLite) RunID() string { return s.runID }

// SetBatchSize changes how many reports are buffered before a flush.
func (s *SQLite) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

func (s *SQLite) Report(r md.Report) error {
	if s.closed {
		return fmt.Errorf("sqlite reporter is closed")
	}
	s.batch = append(s.batch, r)
	if len(s.batch) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes all buffered reports in a single transaction.
func (s *SQLite) Flush() error {
	if len(s.batch) == 0 || s.closed {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO reports
	(run_id, step, time, potential_energy, kinetic_energy, total_energy, temperature)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range s.batch {
		_, err := stmt.Exec(s.runID, r.Step, r.Time, r.PotentialEnergy, r.KineticEnergy, r.TotalEnergy, r.Temperature)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert step %d: %w", r.Step, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.batch = s.batch[:0]
	return nil
}

func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	err := s.Flush()
	s.closed = true
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// LoadSQLite reads back the reports of one run in step order.
func LoadSQLite(db *sql.DB, runID string) ([]md.Report, error) {
	rows, err := db.Query(`SELECT step, time, potential_energy, kinetic_energy, total_energy, temperature
	FROM reports WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []md.Report
	for rows.Next() {
		var r md.Report
		if err := rows.Scan(&r.Step, &r.Time, &r.PotentialEnergy, &r.KineticEnergy, &r.TotalEnergy, &r.Temperature); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
