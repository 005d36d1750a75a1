// Package store handles SQLite persistence of run telemetry.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/marquee/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			rows INTEGER NOT NULL,
			velocity REAL NOT NULL,
			copies INTEGER NOT NULL,
			reduced_motion INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id INTEGER NOT NULL,
			row INTEGER NOT NULL,
			text TEXT NOT NULL,
			frames INTEGER NOT NULL,
			processed INTEGER NOT NULL,
			throttled INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			suspended INTEGER NOT NULL,
			direction_flips INTEGER NOT NULL,
			distance REAL NOT NULL,
			cycles REAL NOT NULL,
			PRIMARY KEY (run_id, row)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_rows_text ON run_rows(text);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its per-row counters.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, rows []model.RowRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, ended_at, rows, velocity, copies, reduced_motion, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Rows,
		run.Velocity,
		run.Copies,
		run.ReducedMotion,
		run.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_rows (run_id, row, text, frames, processed, throttled, dropped, suspended, direction_flips, distance, cycles)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, id, r.Row, r.Text, r.Frames, r.Processed, r.Throttled,
				r.Dropped, r.Suspended, r.DirectionFlips, r.Distance, r.Cycles); err != nil {
				return 0, fmt.Errorf("failed to insert row %d: %w", r.Row, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns run aggregates filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "r.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT r.id, r.ended_at, r.duration_ms, r.rows,
			COALESCE(SUM(rr.frames), 0), COALESCE(SUM(rr.processed), 0),
			COALESCE(SUM(rr.distance), 0), COALESCE(SUM(rr.cycles), 0)
		FROM runs r
		LEFT JOIN run_rows rr ON rr.run_id = r.id
		WHERE %s
		GROUP BY r.id
		ORDER BY r.ended_at ASC, r.id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt string
		if err := rows.Scan(&agg.RunID, &endedAt, &agg.DurationMs, &agg.Rows,
			&agg.Frames, &agg.Processed, &agg.Distance, &agg.Cycles); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run end time: %w", err)
		}
		agg.EndedAt = parsed
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RowTotals aggregates row counters by text across the given runs.
func (s *Store) RowTotals(ctx context.Context, runIDs []int64) ([]model.RowTotal, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT text, COUNT(DISTINCT run_id), SUM(frames), SUM(processed),
			SUM(throttled), SUM(dropped), SUM(suspended), SUM(direction_flips),
			SUM(distance), SUM(cycles)
		FROM run_rows
		WHERE run_id IN (%s)
		GROUP BY text
		ORDER BY text ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rows: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.RowTotal
	for rows.Next() {
		var total model.RowTotal
		if err := rows.Scan(&total.Text, &total.Runs, &total.Frames, &total.Processed,
			&total.Throttled, &total.Dropped, &total.Suspended, &total.DirectionFlips,
			&total.Distance, &total.Cycles); err != nil {
			return nil, err
		}
		result = append(result, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
