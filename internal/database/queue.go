package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// Queue priorities. Higher priorities are taken first.
const (
	// PriorityUser is used for start pages the user asked for.
	PriorityUser = 9

	// PriorityDeadEnd is used for dead ends queued for a recheck.
	PriorityDeadEnd = 7

	// PriorityShared is used for earlier start pages that still miss a
	// path to one of the targets.
	PriorityShared = 5

	// MinPriority and MaxPriority bound every queue priority.
	MinPriority = 0
	MaxPriority = 9
)

// ErrInvalidPriority is returned for a priority outside MinPriority and
// MaxPriority.
var ErrInvalidPriority = errors.New("invalid queue priority")

// QueueEntry is one queued start page.
type QueueEntry struct {
	// ID is the queued start page.
	ID model.PageID `json:"id"`

	// Priority orders the queue, highest first.
	Priority int `json:"priority"`

	// AddedAt is when the page was first queued.
	AddedAt time.Time `json:"added_at"`
}

// Enqueue adds a start page to the queue. A page already queued keeps its
// place and only moves up when priority is higher than before.
func (w *WikiDB) Enqueue(ctx context.Context, id model.PageID, priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidPriority, priority, MinPriority, MaxPriority)
	}

	query := `
	INSERT INTO queue (title, priority, added_at)
	VALUES (?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		priority = excluded.priority
	WHERE excluded.priority > queue.priority
	`

	_, err := w.db.ExecContext(ctx, query, id.String(), priority, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", id, err)
	}
	return nil
}

// NextQueued returns the queued page with the highest priority, oldest
// first among equals. The page stays queued until Dequeue is called. It
// returns false when the queue is empty.
func (w *WikiDB) NextQueued(ctx context.Context) (model.PageID, bool, error) {
	var title string
	err := w.db.QueryRowContext(ctx,
		`SELECT title FROM queue ORDER BY priority DESC, added_at, title LIMIT 1`,
	).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PageID{}, false, nil
	}
	if err != nil {
		return model.PageID{}, false, fmt.Errorf("failed to read queue: %w", err)
	}

	id, err := parseStoredID(title)
	if err != nil {
		return model.PageID{}, false, err
	}
	return id, true, nil
}

// Dequeue removes a page from the queue. Removing a page that is not
// queued is not an error.
func (w *WikiDB) Dequeue(ctx context.Context, id model.PageID) error {
	if _, err := w.db.ExecContext(ctx, `DELETE FROM queue WHERE title = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to dequeue %s: %w", id, err)
	}
	return nil
}

// ListQueue returns the queue in the order it is worked off.
func (w *WikiDB) ListQueue(ctx context.Context) ([]QueueEntry, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT title, priority, added_at FROM queue ORDER BY priority DESC, added_at, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var results []QueueEntry
	for rows.Next() {
		var title, addedAt string
		var priority int
		if err := rows.Scan(&title, &priority, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		id, err := parseStoredID(title)
		if err != nil {
			return nil, err
		}
		results = append(results, QueueEntry{ID: id, Priority: priority, AddedAt: parseTimestamp(addedAt)})
	}

	return results, rows.Err()
}

// RecheckDeadEnds forgets every recorded dead end and queues it as a start
// page with PriorityDeadEnd, so the next search fetches it again. It
// returns how many dead ends were moved.
func (w *WikiDB) RecheckDeadEnds(ctx context.Context) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timestampLayout)
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO queue (title, priority, added_at)
	SELECT title, ?, ? FROM dead_ends WHERE true
	ON CONFLICT(title) DO UPDATE SET
		priority = excluded.priority
	WHERE excluded.priority > queue.priority
	`, PriorityDeadEnd, now); err != nil {
		return 0, fmt.Errorf("failed to queue dead ends: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM dead_ends`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear dead ends: %w", err)
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count dead ends: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recheck: %w", err)
	}
	return int(moved), nil
}

// IncompleteStarts returns the start pages of earlier searches that have
// no found path to at least one of targets, in alphabetical order. With no
// targets, every target searched for so far is used.
func (w *WikiDB) IncompleteStarts(ctx context.Context, targets []model.PageID) ([]model.PageID, error) {
	var (
		wanted string
		args   []any
	)
	if len(targets) == 0 {
		wanted = `SELECT DISTINCT target AS title FROM paths`
	} else {
		for i, t := range targets {
			if i > 0 {
				wanted += " UNION "
			}
			wanted += "SELECT ? AS title"
			args = append(args, t.String())
		}
	}

	// #nosec G202 -- wanted only contains placeholders
	query := `
	SELECT DISTINCT s.start
	FROM paths s, (` + wanted + `) t
	WHERE NOT EXISTS (
		SELECT 1 FROM paths p
		WHERE p.start = s.start AND p.target = t.title AND p.outcome = ?
	)
	ORDER BY s.start
	`
	args = append(args, model.OutcomeFound.String())

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomplete starts: %w", err)
	}
	defer rows.Close()

	var results []model.PageID
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan start: %w", err)
		}
		id, err := parseStoredID(title)
		if err != nil {
			return nil, err
		}
		results = append(results, id)
	}

	return results, rows.Err()
}

// ShareStarts queues every start page from IncompleteStarts with
// PriorityShared and returns how many pages it queued.
func (w *WikiDB) ShareStarts(ctx context.Context, targets []model.PageID) (int, error) {
	starts, err := w.IncompleteStarts(ctx, targets)
	if err != nil {
		return 0, err
	}
	for _, start := range starts {
		if err := w.Enqueue(ctx, start, PriorityShared); err != nil {
			return 0, err
		}
	}
	return len(starts), nil
}
