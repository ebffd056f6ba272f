package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/phishscan/phishscan/internal/model"
)

// Store provides SQLite-based storage for check results.
// It manages connection pooling and provides methods for recording checks
// and querying a URL's verdict history.
//
// Design decision: We use a single database file for all URLs rather than
// any per-URL partitioning. Verdict timelines are per-URL queries over one
// indexed table, and a single file keeps backup/restore trivial.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a history store at the specified file path.
// If CreateIfNotExists is true, the parent directory and database file are
// created. If CreateIfNotExists is false and the database doesn't exist,
// an error is returned.
func Open(dbPath string, opts Options) (*Store, error) {
	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Checks store one row per completed URL check, append-only.
	CREATE TABLE IF NOT EXISTS checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		final_verdict TEXT NOT NULL,
		model_verdict TEXT NOT NULL,
		gsb_verdict TEXT NOT NULL,
		vt_verdict TEXT NOT NULL,
		model_probability REAL DEFAULT 0,
		model_version TEXT,
		content_fetched INTEGER DEFAULT 0,
		error TEXT,
		checked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_checks_url ON checks(url);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is one stored check result with its database identity.
type Entry struct {
	// ID is the unique identifier of the check in the database.
	ID int64

	// Report is the stored check result.
	Report model.ScanReport
}

// Save records a completed check. Checks are append-only: repeated checks
// of the same URL accumulate, which is exactly what the verdict timeline
// needs.
func (s *Store) Save(ctx context.Context, report *model.ScanReport) (int64, error) {
	query := `
	INSERT INTO checks (url, final_verdict, model_verdict, gsb_verdict, vt_verdict,
		model_probability, model_version, content_fetched, error, checked_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	checkedAt := report.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, query,
		report.URL,
		report.FinalVerdict.String(),
		report.Details.Model.String(),
		report.Details.SafeBrowsing.String(),
		report.Details.VirusTotal.String(),
		report.ModelProbability,
		report.ModelVersion,
		boolToInt(report.ContentFetched),
		report.Error,
		checkedAt.Format(timestampLayout),
		report.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save check: %w", err)
	}

	return result.LastInsertId()
}

// Latest retrieves the most recent check for a URL.
// Returns nil without error when the URL has never been checked.
func (s *Store) Latest(ctx context.Context, url string) (*Entry, error) {
	query := selectColumns + `
	FROM checks
	WHERE url = ?
	ORDER BY checked_at DESC, id DESC
	LIMIT 1
	`

	row := s.db.QueryRowContext(ctx, query, url)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest check: %w", err)
	}
	return entry, nil
}

// Timeline retrieves the check history for a URL, newest first.
// The limit bounds the number of rows; zero or negative means no limit.
func (s *Store) Timeline(ctx context.Context, url string, limit int) ([]Entry, error) {
	query := selectColumns + `
	FROM checks
	WHERE url = ?
	ORDER BY checked_at DESC, id DESC
	`
	args := []any{url}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// ListURLs returns every URL with at least one stored check, sorted.
func (s *Store) ListURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM checks
	ORDER BY url
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// selectColumns is the shared column list for entry queries.
// Kept as one constant so scanEntry and every query stay in step.
const selectColumns = `
	SELECT id, url, final_verdict, model_verdict, gsb_verdict, vt_verdict,
		model_probability, model_version, content_fetched, error, checked_at, duration_ms
`

// rowScanner abstracts *sql.Row and *sql.Rows for scanEntry.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one check row into an Entry.
func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry          Entry
		finalVerdict   string
		modelVerdict   string
		gsbVerdict     string
		vtVerdict      string
		modelVersion   sql.NullString
		contentFetched int
		errText        sql.NullString
		checkedAt      string
	)

	err := row.Scan(
		&entry.ID,
		&entry.Report.URL,
		&finalVerdict,
		&modelVerdict,
		&gsbVerdict,
		&vtVerdict,
		&entry.Report.ModelProbability,
		&modelVersion,
		&contentFetched,
		&errText,
		&checkedAt,
		&entry.Report.DurationMS,
	)
	if err != nil {
		return nil, err
	}

	// Stored verdict strings are written by Verdict.String, so a parse
	// failure means a hand-edited database; degrade to Suspicious.
	entry.Report.FinalVerdict, _ = model.ParseVerdict(finalVerdict)     //nolint:errcheck
	entry.Report.Details.Model, _ = model.ParseVerdict(modelVerdict)    //nolint:errcheck
	entry.Report.Details.SafeBrowsing, _ = model.ParseVerdict(gsbVerdict) //nolint:errcheck
	entry.Report.Details.VirusTotal, _ = model.ParseVerdict(vtVerdict)  //nolint:errcheck

	entry.Report.ModelVersion = modelVersion.String
	entry.Report.ContentFetched = contentFetched != 0
	entry.Report.Error = errText.String
	entry.Report.CheckedAt = parseTimestamp(checkedAt)

	return &entry, nil
}

// boolToInt converts a bool to the 0/1 SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampLayout is the format used when writing timestamps.
// It matches SQLite's CURRENT_TIMESTAMP output so stored rows sort
// consistently whether the time came from Go or from SQLite.
const timestampLayout = "2006-01-02 15:04:05"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
