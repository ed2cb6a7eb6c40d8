package core

// history.go stores conversion metadata: file names, formats, counts and the
// columns kept. Cell data is never stored.
//
// PostgresHistory is used when a database is configured; MemoryHistory keeps
// a bounded ring of recent records otherwise.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultHistorySize is the MemoryHistory capacity when none is configured.
const DefaultHistorySize = 200

// MaxHistoryLimit caps the number of records Recent returns.
const MaxHistoryLimit = 500

// HistoryRecord describes one finished conversion.
type HistoryRecord struct {
	ID                uuid.UUID `json:"id"`
	FileName          string    `json:"fileName"`
	OutputName        string    `json:"outputName"`
	Source            string    `json:"source"`
	Target            string    `json:"target"`
	RowsIn            int       `json:"rowsIn"`
	RowsOut           int       `json:"rowsOut"`
	DuplicatesRemoved int       `json:"duplicatesRemoved"`
	CellsFilled       int       `json:"cellsFilled"`
	Columns           []string  `json:"columns"`
	ClientIP          string    `json:"clientIP,omitempty"`
	UserAgent         string    `json:"userAgent,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// HistoryStore persists conversion records.
type HistoryStore interface {
	Record(ctx context.Context, rec HistoryRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]HistoryRecord, error)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// MemoryHistory is a fixed-size ring of records.
type MemoryHistory struct {
	mu      sync.Mutex
	records []HistoryRecord
	next    int
	full    bool
}

// NewMemoryHistory creates a ring holding at most size records.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MemoryHistory{records: make([]HistoryRecord, size)}
}

// Record adds rec, overwriting the oldest record when full.
func (h *MemoryHistory) Record(_ context.Context, rec HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = rec
	h.next = (h.next + 1) % len(h.records)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.records)
	}
	n = min(n, clampLimit(limit))

	out := make([]HistoryRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.records)) % len(h.records)
		out = append(out, h.records[idx])
	}
	return out, nil
}

// DBTX is the subset of pgx used by PostgresHistory.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id                 uuid PRIMARY KEY,
	file_name          text NOT NULL,
	output_name        text NOT NULL,
	source_format      text NOT NULL,
	target_format      text NOT NULL,
	rows_in            integer NOT NULL,
	rows_out           integer NOT NULL,
	duplicates_removed integer NOT NULL DEFAULT 0,
	cells_filled       integer NOT NULL DEFAULT 0,
	columns            text[] NOT NULL,
	client_ip          text NOT NULL DEFAULT '',
	user_agent         text NOT NULL DEFAULT '',
	created_at         timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversion_history_created_at_idx
	ON conversion_history (created_at DESC);`

const insertHistory = `
INSERT INTO conversion_history (
	id, file_name, output_name, source_format, target_format,
	rows_in, rows_out, duplicates_removed, cells_filled, columns,
	client_ip, user_agent, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const selectRecentHistory = `
SELECT id, file_name, output_name, source_format, target_format,
	rows_in, rows_out, duplicates_removed, cells_filled, columns,
	client_ip, user_agent, created_at
FROM conversion_history
ORDER BY created_at DESC
LIMIT $1`

// PostgresHistory stores records in the conversion_history table.
type PostgresHistory struct {
	db DBTX
}

// NewPostgresHistory returns a store backed by db. Call Migrate once at
// startup to create the table.
func NewPostgresHistory(db DBTX) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// Migrate creates the history table and index if they do not exist.
func (h *PostgresHistory) Migrate(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("create conversion_history: %w", err)
	}
	return nil
}

// Record inserts rec.
func (h *PostgresHistory) Record(ctx context.Context, rec HistoryRecord) error {
	if rec.Columns == nil {
		rec.Columns = []string{}
	}
	_, err := h.db.Exec(ctx, insertHistory,
		rec.ID, rec.FileName, rec.OutputName, rec.Source, rec.Target,
		rec.RowsIn, rec.RowsOut, rec.DuplicatesRemoved, rec.CellsFilled, rec.Columns,
		rec.ClientIP, rec.UserAgent, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion history: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *PostgresHistory) Recent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	rows, err := h.db.Query(ctx, selectRecentHistory, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query conversion history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.FileName, &rec.OutputName, &rec.Source, &rec.Target,
			&rec.RowsIn, &rec.RowsOut, &rec.DuplicatesRemoved, &rec.CellsFilled, &rec.Columns,
			&rec.ClientIP, &rec.UserAgent, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion history: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read conversion history: %w", err)
	}
	return out, nil
}
