package database

import (
	"context"
	"errors"
	"testing"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

func queuedTitles(t *testing.T, db *WikiDB) []model.PageID {
	t.Helper()

	entries, err := db.ListQueue(context.Background())
	if err != nil {
		t.Fatalf("failed to list queue: %v", err)
	}
	out := make([]model.PageID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// TestQueue tests adding, ordering and removing start pages.
func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("empty queue has no next page", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, ok, err := db.NextQueued(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected an empty queue")
		}
	})

	t.Run("highest priority comes first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		for _, e := range []struct {
			title    string
			priority int
		}{
			{"Shared", PriorityShared},
			{"User", PriorityUser},
			{"Dead", PriorityDeadEnd},
		} {
			if err := db.Enqueue(ctx, model.MustParsePageID(e.title), e.priority); err != nil {
				t.Fatalf("failed to enqueue %s: %v", e.title, err)
			}
		}

		next, ok, err := db.NextQueued(ctx)
		if err != nil || !ok {
			t.Fatalf("expected a queued page, got %v, %v", ok, err)
		}
		if next != model.MustParsePageID("User") {
			t.Errorf("expected User, got %s", next)
		}
		if got := queuedTitles(t, db); !sameTitles(got, ids("User", "Dead", "Shared")) {
			t.Errorf("unexpected queue order %v", got)
		}
	})

	t.Run("re-queueing only raises the priority", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		page := model.MustParsePageID("Tea")

		if err := db.Enqueue(ctx, page, PriorityDeadEnd); err != nil {
			t.Fatal(err)
		}
		if err := db.Enqueue(ctx, page, PriorityShared); err != nil {
			t.Fatal(err)
		}
		entries, err := db.ListQueue(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Priority != PriorityDeadEnd {
			t.Fatalf("expected one entry at priority %d, got %+v", PriorityDeadEnd, entries)
		}

		if err := db.Enqueue(ctx, page, PriorityUser); err != nil {
			t.Fatal(err)
		}
		entries, err = db.ListQueue(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if entries[0].Priority != PriorityUser {
			t.Errorf("expected priority %d, got %d", PriorityUser, entries[0].Priority)
		}
	})

	t.Run("dequeue removes the page", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		page := model.MustParsePageID("Tea")

		if err := db.Enqueue(ctx, page, PriorityUser); err != nil {
			t.Fatal(err)
		}
		if err := db.Dequeue(ctx, page); err != nil {
			t.Fatalf("failed to dequeue: %v", err)
		}
		if err := db.Dequeue(ctx, page); err != nil {
			t.Errorf("expected dequeue of a missing page to succeed, got %v", err)
		}

		stats, err := db.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Queued != 0 {
			t.Errorf("expected empty queue, got %d", stats.Queued)
		}
	})

	t.Run("priority out of range", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for _, p := range []int{MinPriority - 1, MaxPriority + 1} {
			err := db.Enqueue(context.Background(), model.MustParsePageID("Tea"), p)
			if !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("expected ErrInvalidPriority for %d, got %v", p, err)
			}
		}
	})
}

// TestRecheckDeadEnds tests moving dead ends back into the queue.
func TestRecheckDeadEnds(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"Gone", "Missing"} {
		if err := db.MarkDeadEnd(ctx, model.MustParsePageID(title), "page not found"); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Enqueue(ctx, model.MustParsePageID("Gone"), PriorityUser); err != nil {
		t.Fatal(err)
	}

	moved, err := db.RecheckDeadEnds(ctx)
	if err != nil {
		t.Fatalf("failed to recheck dead ends: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 dead ends moved, got %d", moved)
	}

	links, err := db.LoadPage(ctx, model.MustParsePageID("Missing"))
	if err != nil {
		t.Fatal(err)
	}
	if links != nil {
		t.Errorf("expected the dead end to be forgotten, got %+v", links)
	}

	entries, err := db.ListQueue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"Gone": PriorityUser, "Missing": PriorityDeadEnd}
	if len(entries) != len(want) {
		t.Fatalf("expected %d queued pages, got %+v", len(want), entries)
	}
	for _, e := range entries {
		if want[e.ID.String()] != e.Priority {
			t.Errorf("expected %s at priority %d, got %d", e.ID, want[e.ID.String()], e.Priority)
		}
	}

	moved, err = db.RecheckDeadEnds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 0 {
		t.Errorf("expected nothing left to move, got %d", moved)
	}
}

// TestShareStarts tests queueing starts that miss a path to a target.
func TestShareStarts(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	save := func(start, target string, outcome model.Outcome) {
		t.Helper()
		rec := NewPathRecord(model.MustParsePageID(start), model.MustParsePageID(target),
			&model.SearchResult{Outcome: outcome})
		if _, err := db.SavePath(ctx, rec); err != nil {
			t.Fatalf("failed to save path: %v", err)
		}
	}
	save("Alpha", "Jesus", model.OutcomeFound)
	save("Alpha", "Philosophy", model.OutcomeFound)
	save("Beta", "Jesus", model.OutcomeFound)
	save("Gamma", "Philosophy", model.OutcomeLimitReached)

	t.Run("every known target", func(t *testing.T) {
		got, err := db.IncompleteStarts(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sameTitles(got, ids("Beta", "Gamma")) {
			t.Errorf("expected [Beta Gamma], got %v", got)
		}
	})

	t.Run("given targets", func(t *testing.T) {
		got, err := db.IncompleteStarts(ctx, ids("Jesus"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sameTitles(got, ids("Gamma")) {
			t.Errorf("expected [Gamma], got %v", got)
		}

		got, err = db.IncompleteStarts(ctx, ids("Jesus", "Tea"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sameTitles(got, ids("Alpha", "Beta", "Gamma")) {
			t.Errorf("expected every start for an unseen target, got %v", got)
		}
	})

	t.Run("queues the starts", func(t *testing.T) {
		queued, err := db.ShareStarts(ctx, ids("Philosophy"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if queued != 2 {
			t.Errorf("expected 2 queued starts, got %d", queued)
		}
		if got := queuedTitles(t, db); !sameTitles(got, ids("Beta", "Gamma")) {
			t.Errorf("expected [Beta Gamma] queued, got %v", got)
		}
	})
}
