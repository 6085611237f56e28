/*
Package sqlite provides a SQLite-backed implementation of the run
store.

PURPOSE:
  Persists reconciliation runs: the run header with its summary, the
  surviving fragments with WKT geometry, the deleted fragment ids and
  the anomaly report. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

WRITE-ONCE ENFORCEMENT:
  Runs are never updated in place:
  - SaveRun is the only write path and runs in one transaction
  - No UPDATE or DELETE statements anywhere in this package
  - A second save under the same id fails with ErrRunExists

KEY TABLES:
  runs:           Run header, profile and summary (JSON columns)
  run_fragments:  Surviving fragments, geometry as WKT
  run_deleted:    Fragment ids removed by merge or delete
  run_anomalies:  The anomaly report, in recorded order

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers are not
  blocked while a run is being written.

USAGE:
  st, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - recon/engine.go: Where run results come from
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/store"
)

// Store implements store.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Run headers (write-once)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		layer TEXT NOT NULL,
		profile TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_layer
		ON runs(layer);

	-- Surviving fragments, geometry flattened to WKT
	CREATE TABLE IF NOT EXISTS run_fragments (
		run_id TEXT NOT NULL REFERENCES runs(id),
		fragment_id INTEGER NOT NULL,
		parent_key TEXT NOT NULL,
		wkt TEXT NOT NULL,
		geom_area REAL NOT NULL,
		sfl INTEGER NOT NULL,
		is_overlap BOOLEAN NOT NULL DEFAULT FALSE,
		yield_number REAL,
		emz INTEGER,
		disposition TEXT NOT NULL,
		PRIMARY KEY (run_id, fragment_id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_fragments_parent
		ON run_fragments(run_id, parent_key);

	-- Fragment ids removed by merge or delete
	CREATE TABLE IF NOT EXISTS run_deleted (
		run_id TEXT NOT NULL REFERENCES runs(id),
		fragment_id INTEGER NOT NULL,
		disposition TEXT NOT NULL,
		PRIMARY KEY (run_id, fragment_id)
	);

	-- Anomaly report, seq preserves recorded order
	CREATE TABLE IF NOT EXISTS run_anomalies (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		parent_key TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_run_anomalies_kind
		ON run_anomalies(run_id, kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE PATH
// =============================================================================

// SaveRun writes one run atomically.
func (s *Store) SaveRun(ctx context.Context, run store.Run, fragments []store.FragmentRecord, deleted []recon.FragmentID, anomalies []recon.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, layer, profile, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Layer, run.Profile, string(summaryJSON), createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", store.ErrRunExists, run.ID)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range fragments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_fragments
			(run_id, fragment_id, parent_key, wkt, geom_area, sfl, is_overlap, yield_number, emz, disposition)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, int64(f.ID), string(f.Parent), f.WKT, f.GeomArea, f.SFL, f.IsOverlap,
			nullFloat(f.YieldNumber), nullInt(f.EMZ), string(f.Disposition),
		)
		if err != nil {
			return fmt.Errorf("failed to insert fragment %d: %w", f.ID, err)
		}
	}

	for _, id := range deleted {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_deleted (run_id, fragment_id, disposition)
			VALUES (?, ?, ?)`,
			run.ID, int64(id), string(recon.DispositionDeleted),
		)
		if err != nil {
			return fmt.Errorf("failed to insert deleted id %d: %w", id, err)
		}
	}

	for i, a := range anomalies {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_anomalies (run_id, seq, parent_key, kind, detail)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, string(a.Parent), string(a.Kind), a.Detail,
		)
		if err != nil {
			return fmt.Errorf("failed to insert anomaly %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// READ PATH
// =============================================================================

// GetRun returns one stored run header.
func (s *Store) GetRun(ctx context.Context, id string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, layer, profile, summary_json, created_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// ListRuns returns stored run headers, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, layer, profile, summary_json, created_at
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RunFragments returns a run's surviving fragments in id order.
func (s *Store) RunFragments(ctx context.Context, id string) ([]store.FragmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.runExists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fragment_id, parent_key, wkt, geom_area, sfl, is_overlap, yield_number, emz, disposition
		FROM run_fragments WHERE run_id = ? ORDER BY fragment_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load fragments: %w", err)
	}
	defer rows.Close()

	var fragments []store.FragmentRecord
	for rows.Next() {
		var (
			f           store.FragmentRecord
			fragmentID  int64
			parent      string
			yield       sql.NullFloat64
			emz         sql.NullInt64
			disposition string
		)
		if err := rows.Scan(&fragmentID, &parent, &f.WKT, &f.GeomArea, &f.SFL, &f.IsOverlap, &yield, &emz, &disposition); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		f.ID = recon.FragmentID(fragmentID)
		f.Parent = recon.ParentKey(parent)
		f.Disposition = recon.Disposition(disposition)
		if yield.Valid {
			v := yield.Float64
			f.YieldNumber = &v
		}
		if emz.Valid {
			v := emz.Int64
			f.EMZ = &v
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// RunDeleted returns a run's deleted fragment ids in id order.
func (s *Store) RunDeleted(ctx context.Context, id string) ([]recon.FragmentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.runExists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fragment_id FROM run_deleted WHERE run_id = ? ORDER BY fragment_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load deleted ids: %w", err)
	}
	defer rows.Close()

	var ids []recon.FragmentID
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan deleted id: %w", err)
		}
		ids = append(ids, recon.FragmentID(v))
	}
	return ids, rows.Err()
}

// RunAnomalies returns a run's anomaly report in recorded order.
func (s *Store) RunAnomalies(ctx context.Context, id string) ([]recon.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.runExists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT parent_key, kind, detail FROM run_anomalies WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []recon.Anomaly
	for rows.Next() {
		var parent, kind, detail string
		if err := rows.Scan(&parent, &kind, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		anomalies = append(anomalies, recon.Anomaly{
			Parent: recon.ParentKey(parent),
			Kind:   recon.AnomalyKind(kind),
			Detail: detail,
		})
	}
	return anomalies, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*store.Run, error) {
	var (
		run         store.Run
		summaryJSON string
		createdAt   string
	)
	if err := row.Scan(&run.ID, &run.Layer, &run.Profile, &summaryJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("corrupt summary for run %s: %w", run.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt timestamp for run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	return &run, nil
}

func (s *Store) runExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return err
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed"))
}
