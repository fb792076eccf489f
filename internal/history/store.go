// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history maintains a queryable SQLite index over the triage CSV
// log. The CSV stays the source of truth; the index is rebuilt from it at
// any time and adds full-text search over titles and summaries.
package history

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "triage-history.db"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the history database at dir/triage-history.db,
// creating the schema if needed.
func NewStore(dir string, maxResults int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			title TEXT NOT NULL,
			path TEXT NOT NULL,
			summary TEXT,
			decision TEXT NOT NULL,
			dry_run INTEGER NOT NULL,
			UNIQUE(timestamp, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_decision ON entries(decision)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over title and summary. Entries are append-only,
	// so only the insert trigger is needed to keep it in sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entries_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE entries_fts USING fts5(title, summary, content=entries, content_rowid=rowid)`,
			`CREATE TRIGGER entries_ai AFTER INSERT ON entries BEGIN
				INSERT INTO entries_fts(rowid, title, summary) VALUES (new.rowid, new.title, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Indexed int
	Skipped int
}

// Total returns the number of log rows processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Skipped
}

// IngestCSV reads the triage log and inserts every row not yet present in
// the index, keyed on timestamp plus path. Re-running over the same log is
// a no-op for already-indexed rows, so ingestion is idempotent.
func (s *Store) IngestCSV(ctx context.Context, logPath string, w io.Writer) (IngestSummary, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("opening triage log %s: %w", logPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return IngestSummary{}, fmt.Errorf("parsing triage log %s: %w", logPath, err)
	}
	if len(rows) < 2 {
		fmt.Fprintln(w, "triage log holds no entries yet")
		return IngestSummary{}, nil
	}

	var summary IngestSummary
	for _, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if len(row) != 6 {
			fmt.Fprintf(w, "Warning: skipping malformed log row with %d columns\n", len(row))
			summary.Skipped++
			continue
		}

		dryRun := 0
		if parsed, err := strconv.ParseBool(row[5]); err == nil && parsed {
			dryRun = 1
		}

		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO entries (timestamp, title, path, summary, decision, dry_run)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			row[0], row[1], row[2], row[3], row[4], dryRun,
		)
		if err != nil {
			return summary, fmt.Errorf("inserting entry for %s: %w", row[2], err)
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			summary.Skipped++
		} else {
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "indexed: %d, skipped: %d\n", summary.Indexed, summary.Skipped)
	return summary, nil
}

// QueryOptions filters a history search. All fields are optional but at
// least one must be set.
type QueryOptions struct {
	// Query is an FTS5 match expression over title and summary.
	Query string

	// Decision filters on the single-letter decision column.
	Decision string

	// Title filters on a substring of the title.
	Title string

	// Limit caps the result count; 0 uses the store default.
	Limit int
}

// IsEmpty reports whether no filter is set.
func (o QueryOptions) IsEmpty() bool {
	return o.Query == "" && o.Decision == "" && o.Title == ""
}

// Entry is one indexed triage log row.
type Entry struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Title     string `json:"title" yaml:"title"`
	Path      string `json:"path" yaml:"path"`
	Summary   string `json:"summary" yaml:"summary"`
	Decision  string `json:"decision" yaml:"decision"`
	DryRun    bool   `json:"dry_run" yaml:"dry_run"`
}

// Search returns entries matching the options, newest first. Free-text
// queries are ranked by FTS relevance instead.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		query string
		args  []any
	)

	if opts.Query != "" {
		query = `SELECT e.timestamp, e.title, e.path, e.summary, e.decision, e.dry_run
			FROM entries_fts f JOIN entries e ON e.rowid = f.rowid
			WHERE entries_fts MATCH ?`
		args = append(args, opts.Query)
	} else {
		query = `SELECT e.timestamp, e.title, e.path, e.summary, e.decision, e.dry_run
			FROM entries e WHERE 1=1`
	}

	if opts.Decision != "" {
		query += " AND e.decision = ?"
		args = append(args, opts.Decision)
	}
	if opts.Title != "" {
		query += " AND e.title LIKE ?"
		args = append(args, "%"+opts.Title+"%")
	}

	if opts.Query != "" {
		query += " ORDER BY rank"
	} else {
		query += " ORDER BY e.timestamp DESC"
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		var dryRun int
		if err := rows.Scan(&e.Timestamp, &e.Title, &e.Path, &e.Summary, &e.Decision, &dryRun); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.DryRun = dryRun != 0
		results = append(results, e)
	}
	return results, rows.Err()
}
