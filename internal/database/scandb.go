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

	"github.com/shivaghose/guardscan/internal/model"
)

// ScanDB provides SQLite-based storage for scan reports.
//
// Design decision: We store the full report as JSON next to a few
// summary columns. The summary columns make history listings cheap;
// the JSON blob preserves everything for detailed comparison without a
// schema migration every time the report grows a field.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "guardscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; keep the pool minimal.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scan reports store complete directory-mode results as JSON,
	-- with summary columns for cheap history listings.
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		headers_found INTEGER NOT NULL,
		headers_processed INTEGER NOT NULL,
		unprotected INTEGER NOT NULL,
		guarded INTEGER NOT NULL,
		unique_tags INTEGER NOT NULL,
		reused_tags INTEGER NOT NULL,
		malformed INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanMetadata is a summary row describing one stored scan.
type ScanMetadata struct {
	// ID is the scan's database row ID.
	ID int64

	// Root is the scanned directory.
	Root string

	// Timestamp is when the scan was stored.
	Timestamp time.Time

	// HeadersFound, Unprotected, ReusedTags and Malformed summarize the
	// stored report.
	HeadersFound int
	Unprotected  int
	ReusedTags   int
	Malformed    int
}

// SaveScanReport persists a scan report.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize scan report: %w", err)
	}

	query := `
	INSERT INTO scans (root, timestamp, headers_found, headers_processed,
		unprotected, guarded, unique_tags, reused_tags, malformed, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.Root,
		report.DateScanned.UTC().Format(time.RFC3339Nano),
		report.HeadersFound,
		report.HeadersProcessed,
		len(report.Unprotected),
		report.GuardedCount,
		report.UniqueTags,
		report.ReusedTags,
		len(report.Malformed),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	return nil
}

// ScanHistory retrieves all stored reports for a root, newest first.
func (sdb *ScanDB) ScanHistory(ctx context.Context, root string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scans
	WHERE root = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, root)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse stored report: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ScanHistoryWithMetadata retrieves summary rows for a root, newest
// first, without deserializing the full reports.
func (sdb *ScanDB) ScanHistoryWithMetadata(ctx context.Context, root string) ([]ScanMetadata, error) {
	query := `
	SELECT id, root, timestamp, headers_found, unprotected, reused_tags, malformed
	FROM scans
	WHERE root = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, root)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var metas []ScanMetadata
	for rows.Next() {
		var meta ScanMetadata
		var timestamp string
		if err := rows.Scan(&meta.ID, &meta.Root, &timestamp,
			&meta.HeadersFound, &meta.Unprotected, &meta.ReusedTags, &meta.Malformed); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		metas = append(metas, meta)
	}

	return metas, rows.Err()
}

// ScanByID retrieves one stored report by its row ID.
// Returns nil without error when the ID does not exist.
func (sdb *ScanDB) ScanByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `SELECT report_json FROM scans WHERE id = ?`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan %d: %w", id, err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}
	return &report, nil
}

// ListRoots returns all distinct roots with stored scans.
func (sdb *ScanDB) ListRoots(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT root FROM scans ORDER BY root`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// timestampFormats are the layouts SQLite may hand back depending on
// how the value was written.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats, returning the zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
