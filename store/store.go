/*
Package store defines the persistence interfaces for reconciliation
runs.

PURPOSE:
  A run is written once, complete, and never updated: the engine's
  output is a statement about the input data at a point in time, and
  corrections happen by running again, not by editing stored results.
  The interface reflects that - there is a save operation and read
  operations, nothing else.

SEE ALSO:
  - store/sqlite/: The SQLite implementation
  - recon/engine.go: Where RunResult comes from
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/report"
)

// ErrRunNotFound is returned when a run id has no stored run.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned when saving a run id twice.
var ErrRunExists = errors.New("run already exists")

// Run is the stored header of one reconciliation run.
type Run struct {
	ID        string         `json:"id"`
	Layer     string         `json:"layer"`
	Profile   string         `json:"profile"`
	CreatedAt time.Time      `json:"created_at"`
	Summary   report.Summary `json:"summary"`
}

// FragmentRecord is one surviving fragment as persisted: geometry
// flattened to WKT, disposition attached.
type FragmentRecord struct {
	ID          recon.FragmentID  `json:"id"`
	Parent      recon.ParentKey   `json:"parent_key"`
	WKT         string            `json:"wkt"`
	GeomArea    float64           `json:"geom_area"`
	SFL         int64             `json:"sfl"`
	IsOverlap   bool              `json:"is_overlap"`
	YieldNumber *float64          `json:"yield_number,omitempty"`
	EMZ         *int64            `json:"emz,omitempty"`
	Disposition recon.Disposition `json:"disposition"`
}

// RunStore persists whole runs.
type RunStore interface {
	// SaveRun writes one run atomically: header, surviving fragments,
	// deleted ids and anomalies.
	SaveRun(ctx context.Context, run Run, fragments []FragmentRecord, deleted []recon.FragmentID, anomalies []recon.Anomaly) error

	// GetRun returns a stored run header, or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns stored run headers, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// RunFragments returns a run's surviving fragments in fragment id
	// order.
	RunFragments(ctx context.Context, id string) ([]FragmentRecord, error)

	// RunDeleted returns a run's deleted fragment ids in id order.
	RunDeleted(ctx context.Context, id string) ([]recon.FragmentID, error)

	// RunAnomalies returns a run's anomaly report in recorded order.
	RunAnomalies(ctx context.Context, id string) ([]recon.Anomaly, error)

	Close() error
}
