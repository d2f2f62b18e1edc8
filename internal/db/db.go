// Package db is the local run registry: one row per pipeline run with a
// per-layer timing summary, stored in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// OpenDB opens the database at path and applies the connection pragmas
// without touching the schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return &DB{sqlDB}, nil
}

// NewDB opens the database at path and migrates it to the latest schema.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunRecord is one registered pipeline run.
type RunRecord struct {
	ID         string
	CreatedAt  time.Time
	GCodePath  string
	ConfigPath string
	OutputDir  string
	Basename   string
	Layers     int
	Points     int
	Duration   float64 // s, last event series timestamp
	Truncated  bool
	Scheme     string
	Seed       uint64
}

// LayerSummary is the timing of one layer of a run.
type LayerSummary struct {
	Layer    int
	Start    float64
	End      float64
	PowerOn  float64
	PowerOff float64
	Points   int
}

// RecordRun stores r and returns its id. A new id is generated when r.ID is
// empty and CreatedAt defaults to now.
func (db *DB) RecordRun(r RunRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Scheme == "" {
		r.Scheme = "none"
	}
	_, err := db.Exec(`
		INSERT INTO runs (
			id, created_at, gcode_path, config_path, output_dir, basename,
			layers, points, duration_s, truncated, scheme, seed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UnixNano(), r.GCodePath, r.ConfigPath, r.OutputDir, r.Basename,
		r.Layers, r.Points, r.Duration, r.Truncated, r.Scheme, int64(r.Seed),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

// RecordLayers stores the layer summaries of a run in one transaction.
func (db *DB) RecordLayers(runID string, layers []LayerSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_layers (run_id, layer, start_s, end_s, power_on_s, power_off_s, points)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range layers {
		if _, err := stmt.Exec(runID, l.Layer, l.Start, l.End, l.PowerOn, l.PowerOff, l.Points); err != nil {
			return fmt.Errorf("failed to record layer %d of run %s: %w", l.Layer, runID, err)
		}
	}
	return tx.Commit()
}

// Runs returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (db *DB) Runs(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, created_at, gcode_path, config_path, output_dir, basename,
		       layers, points, duration_s, truncated, scheme, seed
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r       RunRecord
			created int64
			seed    int64
		)
		if err := rows.Scan(&r.ID, &created, &r.GCodePath, &r.ConfigPath, &r.OutputDir, &r.Basename,
			&r.Layers, &r.Points, &r.Duration, &r.Truncated, &r.Scheme, &seed); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, created)
		r.Seed = uint64(seed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunLayers returns the layer summaries of a run in layer order.
func (db *DB) RunLayers(runID string) ([]LayerSummary, error) {
	rows, err := db.Query(`
		SELECT layer, start_s, end_s, power_on_s, power_off_s, points
		FROM run_layers
		WHERE run_id = ?
		ORDER BY layer`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LayerSummary
	for rows.Next() {
		var l LayerSummary
		if err := rows.Scan(&l.Layer, &l.Start, &l.End, &l.PowerOn, &l.PowerOff, &l.Points); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
