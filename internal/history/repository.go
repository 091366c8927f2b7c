// Package history records reconciliation runs and the device writes they
// performed, for later inspection of what razerctl changed and when.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one reconciliation pass over the connected devices.
type Run struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	DryRun         bool       `json:"dry_run"`
	DevicesSeen    int        `json:"devices_seen"`
	ChangesApplied int        `json:"changes_applied"`
}

// Change is one device write performed during a run.
type Change struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	DeviceSerial string    `json:"device_serial"`
	DeviceName   string    `json:"device_name"`
	Property     string    `json:"property"`
	Previous     string    `json:"previous"`
	Applied      string    `json:"applied"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines the run-history operations.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	RecordChange(ctx context.Context, change *Change) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListChanges(ctx context.Context, runID string) ([]Change, error)
}

// SQLiteRepository stores run history in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new run-history repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Default and maximum page sizes for ListRuns.
const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// CreateRun inserts a new run row. ID and StartedAt are generated if empty.
func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = "run-" + uuid.NewString()[:8]
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dry_run, devices_seen, changes_applied)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339),
		boolToInt(run.DryRun), run.DevicesSeen, run.ChangesApplied,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// FinishRun stamps the run finished and writes the final counters.
func (r *SQLiteRepository) FinishRun(ctx context.Context, run *Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now

	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, devices_seen = ?, changes_applied = ? WHERE id = ?`,
		now.Format(time.RFC3339), run.DevicesSeen, run.ChangesApplied, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// RecordChange inserts one applied change. ID and CreatedAt are generated
// if empty.
func (r *SQLiteRepository) RecordChange(ctx context.Context, change *Change) error {
	if change.ID == "" {
		change.ID = "chg-" + uuid.NewString()[:8]
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO changes (id, run_id, device_serial, device_name, property, previous, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		change.ID, change.RunID, change.DeviceSerial, change.DeviceName,
		change.Property, change.Previous, change.Applied,
		change.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting change: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, devices_seen, changes_applied
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		var finished sql.NullString
		var dry int
		if err := rows.Scan(&run.ID, &started, &finished, &dry, &run.DevicesSeen, &run.ChangesApplied); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started) //nolint:errcheck // Format is controlled
		if finished.Valid {
			t, _ := time.Parse(time.RFC3339, finished.String) //nolint:errcheck // Format is controlled
			run.FinishedAt = &t
		}
		run.DryRun = dry != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListChanges returns the changes recorded for a run, oldest first.
func (r *SQLiteRepository) ListChanges(ctx context.Context, runID string) ([]Change, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, device_serial, device_name, property, previous, applied, created_at
		 FROM changes WHERE run_id = ? ORDER BY created_at`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var changes []Change
	for rows.Next() {
		var c Change
		var created string
		if err := rows.Scan(&c.ID, &c.RunID, &c.DeviceSerial, &c.DeviceName, &c.Property, &c.Previous, &c.Applied, &created); err != nil {
			return nil, fmt.Errorf("scanning change row: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // Format is controlled
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating changes: %w", err)
	}
	return changes, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
