package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/mdsim/internal/md"
)

// ErrStop may be returned by a reporter to end a run cleanly at the current
// report boundary. It is never surfaced as a run error.
var ErrStop = errors.New("sim: stop requested")

// ReporterError is returned by fail-fast runs when a reporter rejects a report.
type ReporterError struct {
	Reporter md.Reporter
	Step     int
	Wrapped  error
}

func (e *ReporterError) Error() string {
	return fmt.Sprintf("sim: reporter %T failed at step %d: %v", e.Reporter, e.Step, e.Wrapped)
}

func (e *ReporterError) Unwrap() error {
	return e.Wrapped
}
