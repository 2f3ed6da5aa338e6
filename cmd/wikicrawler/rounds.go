package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Baykugan/Wiki-Crawler/internal/config"
	"github.com/Baykugan/Wiki-Crawler/internal/database"
	"github.com/Baykugan/Wiki-Crawler/internal/model"
	"github.com/Baykugan/Wiki-Crawler/internal/pipeline"
)

// errQueueEmpty ends a continuous run that has no queued start page left
// and no way to pick a random one.
var errQueueEmpty = errors.New("start queue is empty")

// roundStats counts what a run of rounds did.
type roundStats struct {
	Rounds   int
	Searches int
	Failed   int
}

// rounds repeats the batch search from a new start page each round.
// Start pages come from the queue in the database first and from the
// random source after that.
type rounds struct {
	cfg    *config.Config
	bp     *pipeline.BatchProcessor
	db     *database.WikiDB
	random pipeline.RandomSource
	logger *slog.Logger
}

// prepare queues the start pages the user asked for and, with ShareStarts,
// the earlier start pages that still miss a path to one of the targets.
func (r *rounds) prepare(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	for _, raw := range r.cfg.QueueStarts {
		id, err := model.ParsePageID(raw)
		if err != nil {
			return fmt.Errorf("invalid start page %q: %w", raw, err)
		}
		if err := r.db.Enqueue(ctx, id, database.PriorityUser); err != nil {
			return err
		}
	}

	if !r.cfg.ShareStarts {
		return nil
	}
	targets := make([]model.PageID, 0, len(r.cfg.Targets))
	for _, raw := range r.cfg.Targets {
		id, err := model.ParsePageID(raw)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", raw, err)
		}
		targets = append(targets, id)
	}
	shared, err := r.db.ShareStarts(ctx, targets)
	if err != nil {
		return err
	}
	r.logger.Info("queued earlier start pages", "count", shared)
	return nil
}

// run searches round after round until cfg.Iterations rounds ran, the
// queue ran dry or ctx ended. done is called for every finished job.
//
// A queued start leaves the queue after its round even when searches of
// the round failed. Only a cancelled round keeps it queued.
func (r *rounds) run(ctx context.Context, done func(job *model.SearchJob, index int)) (roundStats, error) {
	var stats roundStats

	for r.cfg.Iterations == 0 || stats.Rounds < r.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		start, queued, err := r.nextStart(ctx)
		if errors.Is(err, errQueueEmpty) {
			r.logger.Info("no start page left", "rounds", stats.Rounds)
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		stats.Rounds++
		r.logger.Info("starting round",
			"round", stats.Rounds,
			"start", start,
			"queued", queued,
		)

		jobs, err := r.bp.ProcessBatchWithCallback(ctx, start.String(), r.cfg.Targets, done)
		for _, job := range jobs {
			stats.Searches++
			if job != nil && job.Error != nil {
				stats.Failed++
			}
		}
		if err != nil {
			return stats, err
		}

		if queued {
			if err := r.db.Dequeue(ctx, start); err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

// nextStart returns the start page of the next round and whether it came
// from the queue.
func (r *rounds) nextStart(ctx context.Context) (model.PageID, bool, error) {
	if r.cfg.Continuous && r.db != nil {
		id, ok, err := r.db.NextQueued(ctx)
		if err != nil || ok {
			return id, ok, err
		}
	}

	if r.random == nil {
		if r.cfg.Continuous {
			return model.PageID{}, false, errQueueEmpty
		}
		return model.PageID{}, false, pipeline.ErrNoRandomSource
	}

	id, err := r.random.RandomTitle(ctx)
	if err != nil {
		return model.PageID{}, false, fmt.Errorf("failed to pick a random start page: %w", err)
	}
	return id, false, nil
}
