package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// DefaultConcurrency is how many searches a batch runs at once.
// Searches share one rate limiter, so more concurrency mostly adds memory.
const DefaultConcurrency = 2

// BatchProcessor runs one search per target concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline so the Pipeline stays focused on a single job.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	// We use a factory to ensure each job gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent searches.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent searches.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each job to create a fresh
// pipeline instance, so pipeline state doesn't leak between jobs.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch searches from start to every target concurrently.
// An empty start asks each job's resolve step for a random start page.
//
// Returns one job per target in input order, even for searches that failed;
// the job carries the error. The error return is only set when the batch
// was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, start string, targets []string) ([]*model.SearchJob, error) {
	return bp.ProcessBatchWithCallback(ctx, start, targets, nil)
}

// ProcessBatchWithCallback works like ProcessBatch and also calls callback
// for each job as soon as it finishes. This is useful for streaming results.
//
// The callback receives the job and the index of its target in the
// original slice. It is called from the goroutine that ran the job, so it
// must be safe for concurrent use. A nil callback is allowed.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	start string,
	targets []string,
	callback func(job *model.SearchJob, index int),
) ([]*model.SearchJob, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	results := make([]*model.SearchJob, len(targets))
	var mu sync.Mutex

	err := bp.run(ctx, start, targets, func(job *model.SearchJob, index int) {
		mu.Lock()
		results[index] = job
		mu.Unlock()
		if callback != nil {
			callback(job, index)
		}
	})

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

func (bp *BatchProcessor) run(
	parent context.Context,
	start string,
	targets []string,
	done func(job *model.SearchJob, index int),
) error {
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			job := model.NewSearchJob(start, target)
			if err := ctx.Err(); err != nil {
				job.TimedOut = true
				job.Error = err
				job.ErrorMessage = err.Error()
				done(job, i)
				return err
			}

			bp.logger.Info("searching",
				"job", job.Label(),
				"index", i+1,
				"total", len(targets),
			)

			// The error is stored in the job. Returning it would cancel
			// the other searches.
			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("search failed",
					"job", job.Label(),
					"error", err,
				)
			} else {
				bp.logger.Info("search completed", "job", job.Label())
			}

			done(job, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// The group context is always done after Wait.
	return parent.Err()
}
