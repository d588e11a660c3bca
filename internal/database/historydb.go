package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/KENnotcode/taanscrape/internal/model"
)

// dbFileName is the SQLite database file inside the history directory.
const dbFileName = "taanscrape.db"

// HistoryDB stores run summaries and member row snapshots.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. This makes cross-run queries (the diff operation)
// single-statement and keeps backup/restore trivial.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended; readers do not
	// block the writer while a run is being saved.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Run describes one recorded scrape run.
type Run struct {
	// ID is the run's database identifier.
	ID int64

	// StartedAt is when the run began.
	StartedAt time.Time

	// Members is the number of rows written.
	Members int

	// Failed is the number of all-placeholder rows.
	Failed int

	// ElapsedSeconds is the fetch-stage duration.
	ElapsedSeconds float64

	// OutputFile is the spreadsheet path the run produced.
	OutputFile string
}

// Open opens or creates a HistoryDB in the specified directory.
func Open(dir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single pooled connection avoids
	// SQLITE_BUSY during the bulk insert of a run's rows.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per completed scrape run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		members INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		output_file TEXT NOT NULL
	);

	-- Snapshot of every member row written during a run
	CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		source_url TEXT NOT NULL,
		category TEXT NOT NULL,
		organization_name TEXT NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0,
		row_json TEXT NOT NULL,
		UNIQUE(run_id, source_url)
	);

	CREATE INDEX IF NOT EXISTS idx_members_run ON members(run_id);
	CREATE INDEX IF NOT EXISTS idx_members_url ON members(source_url);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records a completed run and its member rows, returning the run ID.
// The insert is transactional: a run either appears with all its rows or
// not at all.
func (h *HistoryDB) SaveRun(ctx context.Context, startedAt time.Time, summary *model.RunSummary, records []*model.MemberRecord, outputFile string) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, members, failed, elapsed_seconds, output_file)
		 VALUES (?, ?, ?, ?, ?)`,
		startedAt.UTC(), summary.Total, summary.Failed, summary.ElapsedSeconds, outputFile,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO members (run_id, source_url, category, organization_name, failed, row_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare member insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		rowJSON, err := json.Marshal(rec.Row())
		if err != nil {
			return 0, fmt.Errorf("marshal row: %w", err)
		}
		failed := 0
		if rec.Failed {
			failed = 1
		}
		if _, err := stmt.ExecContext(ctx,
			runID, rec.SourceURL, rec.Category, rec.OrganizationName, failed, string(rowJSON),
		); err != nil {
			return 0, fmt.Errorf("insert member %s: %w", rec.SourceURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A non-positive limit returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, members, failed, elapsed_seconds, output_file
		 FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Members, &r.Failed, &r.ElapsedSeconds, &r.OutputFile); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DiffRuns compares the member sets of two runs by source URL.
// It returns the URLs present in run b but not run a (added), and those
// present in run a but not run b (removed), each in insertion order.
func (h *HistoryDB) DiffRuns(ctx context.Context, a, b int64) (added, removed []string, err error) {
	added, err = h.membersOnlyIn(ctx, b, a)
	if err != nil {
		return nil, nil, err
	}
	removed, err = h.membersOnlyIn(ctx, a, b)
	if err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

// membersOnlyIn returns the source URLs recorded for run `in` but not for
// run `notIn`.
func (h *HistoryDB) membersOnlyIn(ctx context.Context, in, notIn int64) ([]string, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT source_url FROM members WHERE run_id = ?
		 AND source_url NOT IN (SELECT source_url FROM members WHERE run_id = ?)
		 ORDER BY id`,
		in, notIn,
	)
	if err != nil {
		return nil, fmt.Errorf("diff members: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
