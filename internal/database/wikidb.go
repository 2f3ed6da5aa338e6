package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "wikicrawler.db"

// timestampLayout is how timestamps are written. SQLite compares these
// strings in time order.
const timestampLayout = "2006-01-02 15:04:05"

// WikiDB provides SQLite-based storage for the link cache and for the
// history of searches.
//
// Design decision: Links are stored per canonical article and the requested
// titles map onto it through the articles table, so a redirect and its
// target share one link list.
type WikiDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// maxAge is how long cached links stay valid. Zero keeps them forever.
	maxAge time.Duration
}

// Options configures WikiDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// MaxAge is how long cached links stay valid. Older entries are treated
	// as missing and refetched. Zero keeps them forever.
	MaxAge time.Duration
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a WikiDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*WikiDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
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

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	wdb := &WikiDB{
		db:     db,
		dbPath: dbPath,
		maxAge: opts.MaxAge,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := wdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return wdb, nil
}

// Close closes the database connection.
func (w *WikiDB) Close() error {
	return w.db.Close()
}

// Path returns the database file path.
func (w *WikiDB) Path() string {
	return w.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (w *WikiDB) createTables() error {
	schema := `
	-- Articles map every fetched title, redirects included, to its canonical article
	CREATE TABLE IF NOT EXISTS articles (
		title TEXT PRIMARY KEY,
		canonical TEXT NOT NULL,
		content_hash TEXT,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_articles_canonical ON articles(canonical);

	-- Links hold the ordered outgoing links of canonical articles
	CREATE TABLE IF NOT EXISTS links (
		article TEXT NOT NULL,
		position INTEGER NOT NULL,
		target TEXT NOT NULL,
		PRIMARY KEY (article, position)
	);

	CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);

	-- Dead ends are titles that do not exist
	CREATE TABLE IF NOT EXISTS dead_ends (
		title TEXT PRIMARY KEY,
		reason TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Paths record every finished search
	CREATE TABLE IF NOT EXISTS paths (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start TEXT NOT NULL,
		target TEXT NOT NULL,
		outcome TEXT NOT NULL,
		depth INTEGER NOT NULL,
		pages_fetched INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_paths_created ON paths(created_at);

	-- Path steps are the articles of a found path in order
	CREATE TABLE IF NOT EXISTS path_steps (
		path_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		PRIMARY KEY (path_id, position)
	);

	-- The queue holds start pages waiting for a continuous search
	CREATE TABLE IF NOT EXISTS queue (
		title TEXT PRIMARY KEY,
		priority INTEGER NOT NULL CHECK (priority >= 0 AND priority <= 9),
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_queue_priority ON queue(priority DESC, added_at);
	`

	_, err := w.db.ExecContext(context.Background(), schema)
	return err
}

// LoadPage returns the cached links of a title, or nil and no error when
// the title is not cached or its entry is older than the configured MaxAge.
// Known dead ends are returned with DeadEnd set.
func (w *WikiDB) LoadPage(ctx context.Context, id model.PageID) (*model.PageLinks, error) {
	var reason, deadAt string
	err := w.db.QueryRowContext(ctx,
		`SELECT reason, timestamp FROM dead_ends WHERE title = ?`, id.String(),
	).Scan(&reason, &deadAt)
	switch {
	case err == nil:
		if !w.expired(parseTimestamp(deadAt)) {
			return &model.PageLinks{ID: id, DeadEnd: true, Reason: reason, FetchedAt: parseTimestamp(deadAt)}, nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to get dead end: %w", err)
	}

	var canonical, fetchedAt string
	var hash sql.NullString
	err = w.db.QueryRowContext(ctx,
		`SELECT canonical, content_hash, fetched_at FROM articles WHERE title = ?`, id.String(),
	).Scan(&canonical, &hash, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	page := &model.PageLinks{
		ID:        id,
		Hash:      hash.String,
		FetchedAt: parseTimestamp(fetchedAt),
	}
	if w.expired(page.FetchedAt) {
		return nil, nil
	}
	if page.Canonical, err = parseStoredID(canonical); err != nil {
		return nil, err
	}

	rows, err := w.db.QueryContext(ctx,
		`SELECT target FROM links WHERE article = ? ORDER BY position`, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	page.Links = make([]model.PageID, 0)
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		link, err := parseStoredID(target)
		if err != nil {
			return nil, err
		}
		page.Links = append(page.Links, link)
	}

	return page, rows.Err()
}

// StorePage caches the links of an expanded page. The requested title and
// its canonical article both map to the stored link list, and a dead end
// recorded earlier for the title is cleared.
func (w *WikiDB) StorePage(ctx context.Context, links *model.PageLinks) error {
	canonical := links.Canonical
	if canonical.IsZero() {
		canonical = links.ID
	}
	fetchedAt := links.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	stamp := fetchedAt.UTC().Format(timestampLayout)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT INTO articles (title, canonical, content_hash, fetched_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		canonical = excluded.canonical,
		content_hash = excluded.content_hash,
		fetched_at = excluded.fetched_at
	`
	for _, title := range uniqueTitles(links.ID, canonical) {
		if _, err := tx.ExecContext(ctx, upsert, title, canonical.String(), links.Hash, stamp); err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dead_ends WHERE title = ?`, title); err != nil {
			return fmt.Errorf("failed to clear dead end: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE article = ?`, canonical.String()); err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links (article, position, target) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for i, link := range links.Links {
		if _, err := stmt.ExecContext(ctx, canonical.String(), i, link.String()); err != nil {
			return fmt.Errorf("failed to store link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit links: %w", err)
	}
	return nil
}

// MarkDeadEnd records a title that does not exist.
func (w *WikiDB) MarkDeadEnd(ctx context.Context, id model.PageID, reason string) error {
	query := `
	INSERT INTO dead_ends (title, reason, timestamp)
	VALUES (?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		reason = excluded.reason,
		timestamp = excluded.timestamp
	`

	_, err := w.db.ExecContext(ctx, query, id.String(), reason, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to mark dead end: %w", err)
	}
	return nil
}

// DeadEnd is a recorded missing title.
type DeadEnd struct {
	// ID is the missing title.
	ID model.PageID

	// Reason is the error that marked it.
	Reason string

	// Timestamp is when it was recorded.
	Timestamp time.Time
}

// ListDeadEnds returns all recorded dead ends, newest first.
func (w *WikiDB) ListDeadEnds(ctx context.Context) ([]DeadEnd, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT title, reason, timestamp FROM dead_ends ORDER BY timestamp DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead ends: %w", err)
	}
	defer rows.Close()

	var results []DeadEnd
	for rows.Next() {
		var title, timestamp string
		var reason sql.NullString
		if err := rows.Scan(&title, &reason, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan dead end: %w", err)
		}
		id, err := parseStoredID(title)
		if err != nil {
			return nil, err
		}
		results = append(results, DeadEnd{ID: id, Reason: reason.String, Timestamp: parseTimestamp(timestamp)})
	}

	return results, rows.Err()
}

// PathRecord is one saved search.
type PathRecord struct {
	// ID is the unique identifier of the record in the database.
	ID int64 `json:"id"`

	// Start is the start article.
	Start model.PageID `json:"start"`

	// Target is the target article.
	Target model.PageID `json:"target"`

	// Outcome is the terminal state of the search.
	Outcome model.Outcome `json:"outcome"`

	// Depth is the hop count of a found path, or the deepest depth reached.
	Depth int `json:"depth"`

	// PagesFetched is the number of network fetches the search made.
	PagesFetched int `json:"pages_fetched"`

	// Duration is the wall time of the search.
	Duration time.Duration `json:"duration"`

	// CreatedAt is when the record was saved.
	CreatedAt time.Time `json:"created_at"`

	// Steps is the found path. Empty for other outcomes, and not loaded
	// by ListPaths.
	Steps []model.PageID `json:"steps,omitempty"`
}

// NewPathRecord creates a record for a finished search.
func NewPathRecord(start, target model.PageID, result *model.SearchResult) *PathRecord {
	return &PathRecord{
		Start:        start,
		Target:       target,
		Outcome:      result.Outcome,
		Depth:        result.Depth,
		PagesFetched: result.PagesFetched,
		Duration:     result.Duration,
		Steps:        result.Path,
	}
}

// SavePath saves a search and its path, returning the new record ID.
func (w *WikiDB) SavePath(ctx context.Context, rec *PathRecord) (int64, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO paths (start, target, outcome, depth, pages_fetched, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Start.String(),
		rec.Target.String(),
		rec.Outcome.String(),
		rec.Depth,
		rec.PagesFetched,
		rec.Duration.Milliseconds(),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save path: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get path id: %w", err)
	}

	for i, step := range rec.Steps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO path_steps (path_id, position, title) VALUES (?, ?, ?)`,
			id, i, step.String(),
		); err != nil {
			return 0, fmt.Errorf("failed to save path step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit path: %w", err)
	}
	return id, nil
}

// ListPaths returns the most recent saved searches without their steps.
// A limit of zero or less returns all of them.
func (w *WikiDB) ListPaths(ctx context.Context, limit int) ([]PathRecord, error) {
	query := `
	SELECT id, start, target, outcome, depth, pages_fetched, duration_ms, created_at
	FROM paths
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}
	defer rows.Close()

	var results []PathRecord
	for rows.Next() {
		rec, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

// GetPath retrieves a saved search with its steps by ID.
// It returns nil and no error when the ID does not exist.
func (w *WikiDB) GetPath(ctx context.Context, id int64) (*PathRecord, error) {
	row := w.db.QueryRowContext(ctx, `
	SELECT id, start, target, outcome, depth, pages_fetched, duration_ms, created_at
	FROM paths
	WHERE id = ?
	`, id)

	rec, err := scanPath(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := w.db.QueryContext(ctx,
		`SELECT title FROM path_steps WHERE path_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query path steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan path step: %w", err)
		}
		step, err := parseStoredID(title)
		if err != nil {
			return nil, err
		}
		rec.Steps = append(rec.Steps, step)
	}

	return rec, rows.Err()
}

// Stats summarises the database contents.
type Stats struct {
	Articles int `json:"articles"`
	Links    int `json:"links"`
	DeadEnds int `json:"dead_ends"`
	Paths    int `json:"paths"`
	Queued   int `json:"queued"`
}

// Stats counts the rows of every table.
func (w *WikiDB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"articles", &s.Articles},
		{"links", &s.Links},
		{"dead_ends", &s.DeadEnds},
		{"paths", &s.Paths},
		{"queue", &s.Queued},
	}
	for _, c := range counts {
		// #nosec G202 -- table names are constants above
		if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return &s, nil
}

// Vacuum removes expired cache entries when MaxAge is set and compacts the
// database file.
func (w *WikiDB) Vacuum(ctx context.Context) error {
	if w.maxAge > 0 {
		cutoff := time.Now().Add(-w.maxAge).UTC().Format(timestampLayout)
		statements := []string{
			`DELETE FROM links WHERE article IN (SELECT canonical FROM articles WHERE fetched_at < ?)`,
			`DELETE FROM articles WHERE fetched_at < ?`,
			`DELETE FROM dead_ends WHERE timestamp < ?`,
		}
		for _, stmt := range statements {
			if _, err := w.db.ExecContext(ctx, stmt, cutoff); err != nil {
				return fmt.Errorf("failed to remove expired entries: %w", err)
			}
		}
	}

	if _, err := w.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// expired reports whether an entry stamped at t is older than maxAge.
func (w *WikiDB) expired(t time.Time) bool {
	return w.maxAge > 0 && !t.IsZero() && time.Since(t) > w.maxAge
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPath reads one paths row.
func scanPath(row rowScanner) (*PathRecord, error) {
	var (
		rec                    PathRecord
		start, target, outcome string
		durationMS             int64
		createdAt              string
	)
	err := row.Scan(&rec.ID, &start, &target, &outcome, &rec.Depth, &rec.PagesFetched, &durationMS, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan path: %w", err)
	}

	if rec.Start, err = parseStoredID(start); err != nil {
		return nil, err
	}
	if rec.Target, err = parseStoredID(target); err != nil {
		return nil, err
	}
	if rec.Outcome, err = model.ParseOutcome(outcome); err != nil {
		return nil, fmt.Errorf("failed to parse outcome: %w", err)
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = parseTimestamp(createdAt)
	return &rec, nil
}

// parseStoredID parses a title read back from the database.
func parseStoredID(title string) (model.PageID, error) {
	id, err := model.ParsePageID(title)
	if err != nil {
		return model.PageID{}, fmt.Errorf("corrupt title in database: %w", err)
	}
	return id, nil
}

// uniqueTitles returns the distinct titles of a requested page and its
// canonical article.
func uniqueTitles(requested, canonical model.PageID) []string {
	if requested == canonical {
		return []string{canonical.String()}
	}
	return []string{requested.String(), canonical.String()}
}

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
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
