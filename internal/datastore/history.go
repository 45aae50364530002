package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Cycle history statuses.
const (
	CycleStatusStarted   = "STARTED"
	CycleStatusCompleted = "COMPLETED"
	CycleStatusFailed    = "FAILED"
)

// HistoryDB records one row per check cycle in SQLite.
type HistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// CycleHistoryEntry represents a row of the cycle_history table.
type CycleHistoryEntry struct {
	ID          int64
	CycleID     string
	Mode        string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	Action      sql.NullString
	Summary     sql.NullString
	Changes     int
	Unavailable int
	Errors      int
}

// CycleOutcome holds the completion details of a cycle.
type CycleOutcome struct {
	FinishedAt  time.Time
	Status      string
	Action      string
	Summary     string
	Changes     int
	Unavailable int
	Errors      int
}

// NewHistoryDB opens (creating if needed) the history database and ensures its schema.
func NewHistoryDB(dataSourceName string, logger zerolog.Logger) (*HistoryDB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// A single connection keeps SQLite writes serialized within the process.
	dbInstance.SetMaxOpenConns(1)

	h := &HistoryDB{
		db:     dbInstance,
		logger: logger,
	}

	if err := h.InitSchema(context.Background()); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Msg("History database ready")
	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// InitSchema creates the cycle_history table if it doesn't already exist.
func (h *HistoryDB) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS cycle_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT UNIQUE NOT NULL,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		action TEXT,
		summary TEXT,
		changes INTEGER DEFAULT 0,
		unavailable INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0
	);
	`
	if _, err := h.db.ExecContext(ctx, query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordCycleStart inserts a STARTED row and returns its ID.
func (h *HistoryDB) RecordCycleStart(ctx context.Context, cycleID, mode string, startedAt time.Time) (int64, error) {
	query := `INSERT INTO cycle_history (cycle_id, mode, started_at, status) VALUES (?, ?, ?, ?)`
	result, err := h.db.ExecContext(ctx, query, cycleID, mode, startedAt.UTC(), CycleStatusStarted)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cycle start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	h.logger.Debug().Int64("db_id", id).Str("cycle_id", cycleID).Msg("Recorded cycle start")
	return id, nil
}

// RecordCycleCompletion fills in the outcome of a started cycle.
func (h *HistoryDB) RecordCycleCompletion(ctx context.Context, id int64, outcome CycleOutcome) error {
	query := `UPDATE cycle_history SET finished_at = ?, status = ?, action = ?, summary = ?, changes = ?, unavailable = ?, errors = ? WHERE id = ?`
	_, err := h.db.ExecContext(ctx, query,
		outcome.FinishedAt.UTC(),
		outcome.Status,
		sql.NullString{String: outcome.Action, Valid: outcome.Action != ""},
		sql.NullString{String: outcome.Summary, Valid: outcome.Summary != ""},
		outcome.Changes,
		outcome.Unavailable,
		outcome.Errors,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update cycle completion for ID %d: %w", id, err)
	}
	h.logger.Debug().Int64("db_id", id).Str("status", outcome.Status).Msg("Recorded cycle completion")
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (h *HistoryDB) RecentCycles(ctx context.Context, limit int) ([]CycleHistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, cycle_id, mode, started_at, finished_at, status, action, summary, changes, unavailable, errors
		FROM cycle_history ORDER BY started_at DESC, id DESC LIMIT ?`
	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle history: %w", err)
	}
	defer rows.Close()

	var entries []CycleHistoryEntry
	for rows.Next() {
		var e CycleHistoryEntry
		if err := rows.Scan(&e.ID, &e.CycleID, &e.Mode, &e.StartedAt, &e.FinishedAt, &e.Status, &e.Action, &e.Summary, &e.Changes, &e.Unavailable, &e.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan cycle history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
