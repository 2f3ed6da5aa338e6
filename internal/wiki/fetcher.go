package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

const (
	// DefaultRetryLimit is the number of retries after the first attempt.
	DefaultRetryLimit = 3

	// DefaultMaxRedirects is the longest redirect chain followed before the
	// page is treated as a redirect cycle.
	DefaultMaxRedirects = 5
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64

	// JitterFactor is the maximum jitter as a fraction of backoff (0-1).
	JitterFactor float64
}

// DefaultRetryConfig returns the retry policy used against live wikis.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    DefaultRetryLimit + 1,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// NewRateLimiter returns a gate admitting one request per delay.
// A zero delay admits everything. Share one limiter between every Fetcher
// talking to the same wiki.
func NewRateLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Fetcher turns a Source into the page contract the searcher needs: it
// waits for the rate gate, retries transient failures with backoff and
// resolves redirect chains to the canonical article.
//
// A Fetcher is safe for concurrent use. Concurrent fetches of the same title
// share one request.
type Fetcher struct {
	source         Source
	limiter        *rate.Limiter
	retry          RetryConfig
	attemptTimeout time.Duration
	maxRedirects   int
	logger         *slog.Logger

	group    singleflight.Group
	requests atomic.Int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRateLimiter sets the shared request gate.
func WithRateLimiter(l *rate.Limiter) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.limiter = l
		}
	}
}

// WithRetryLimit sets how many times a transient failure is retried.
// Zero disables retries.
func WithRetryLimit(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retry.MaxAttempts = n + 1
		}
	}
}

// WithRetryConfig replaces the whole retry policy.
func WithRetryConfig(cfg RetryConfig) FetcherOption {
	return func(f *Fetcher) {
		if cfg.MaxAttempts >= 1 {
			f.retry = cfg
		}
	}
}

// WithAttemptTimeout bounds each single request. A timed out attempt is a
// transient failure and is retried.
func WithAttemptTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.attemptTimeout = d
	}
}

// WithMaxRedirects sets the redirect chain bound.
func WithMaxRedirects(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a Fetcher over source.
// Without WithRateLimiter requests are not throttled.
func NewFetcher(source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:       source,
		limiter:      NewRateLimiter(0),
		retry:        DefaultRetryConfig(),
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Requests returns how many requests were sent to the source, retries and
// redirect hops included.
func (f *Fetcher) Requests() int64 {
	return f.requests.Load()
}

// Fetch returns the canonical article for id.
//
// Errors wrap ErrPageNotFound for missing titles, and ErrFetchFailed when
// retries ran out or the redirect chain is unusable (together with
// ErrRedirectCycle). A cancelled ctx returns the context error.
func (f *Fetcher) Fetch(ctx context.Context, id model.PageID) (*model.Page, error) {
	start := time.Now()

	page, err := f.shared(ctx, id)

	fetchDuration.Observe(time.Since(start).Seconds())
	fetchTotal.WithLabelValues(fetchOutcome(err)).Inc()

	return page, err
}

// shared runs one fetch of id for every concurrent caller.
//
// The request runs under the context of the caller that started it. When
// that caller gives up, the others get an abortedError instead of a result;
// they then start the fetch again under their own context.
func (f *Fetcher) shared(ctx context.Context, id model.PageID) (*model.Page, error) {
	for {
		ch := f.group.DoChan(id.String(), func() (any, error) {
			page, err := f.resolve(ctx, id)
			if err != nil && ctx.Err() != nil {
				return nil, &abortedError{cause: err}
			}
			return page, err
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res = <-ch:
		}

		var aborted *abortedError
		switch {
		case res.Err == nil:
			return res.Val.(*model.Page), nil
		case !errors.As(res.Err, &aborted):
			return nil, res.Err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			f.logger.Debug("shared fetch was cancelled by another caller, retrying", "page", id)
		}
	}
}

// abortedError marks a shared fetch that stopped because the context of
// the caller running it ended.
type abortedError struct {
	cause error
}

func (e *abortedError) Error() string {
	return "shared fetch aborted: " + e.cause.Error()
}

func (e *abortedError) Unwrap() error {
	return e.cause
}

// RandomTitle asks the source for a random article. The request waits for
// the rate gate and transient failures are retried like page fetches.
// Sources that cannot pick random articles return ErrRandomUnsupported.
func (f *Fetcher) RandomTitle(ctx context.Context) (model.PageID, error) {
	rs, ok := f.source.(RandomSource)
	if !ok {
		return model.PageID{}, ErrRandomUnsupported
	}

	var id model.PageID
	err := f.withRetry(ctx, "Special:Random", func(ctx context.Context) error {
		var err error
		id, err = rs.RandomTitle(ctx)
		return err
	})
	if err != nil {
		return model.PageID{}, err
	}
	return id, nil
}

// Resolve returns the canonical title id redirects to, or id itself.
func (f *Fetcher) Resolve(ctx context.Context, id model.PageID) (model.PageID, error) {
	page, err := f.Fetch(ctx, id)
	if err != nil {
		return model.PageID{}, err
	}
	return page.ID, nil
}

// resolve follows redirects from id until it reaches content.
func (f *Fetcher) resolve(ctx context.Context, id model.PageID) (*model.Page, error) {
	seen := map[model.PageID]bool{id: true}
	var chain []model.PageID
	current := id

	for {
		doc, err := f.fetchDocument(ctx, current)
		if err != nil {
			return nil, err
		}
		if !doc.IsRedirect() {
			page := model.NewPage(current, doc.Body)
			page.Redirects = chain
			return page, nil
		}

		chain = append(chain, current)
		if len(chain) > f.maxRedirects {
			return nil, fmt.Errorf("%w: %w: %s: more than %d redirects",
				ErrFetchFailed, ErrRedirectCycle, id, f.maxRedirects)
		}
		if seen[doc.RedirectTo] {
			return nil, fmt.Errorf("%w: %w: %s loops back to %s",
				ErrFetchFailed, ErrRedirectCycle, id, doc.RedirectTo)
		}
		seen[doc.RedirectTo] = true

		f.logger.Debug("following redirect", "from", current, "to", doc.RedirectTo)
		current = doc.RedirectTo
	}
}

// fetchDocument retrieves one document, retrying transient failures.
func (f *Fetcher) fetchDocument(ctx context.Context, id model.PageID) (*Document, error) {
	var doc *Document
	err := f.withRetry(ctx, id.String(), func(ctx context.Context) error {
		var err error
		doc, err = f.source.Fetch(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// withRetry runs op behind the rate gate and retries it with backoff while
// it fails with ErrTransient. what names the request in errors and logs.
func (f *Fetcher) withRetry(ctx context.Context, what string, op func(context.Context) error) error {
	backoff := f.retry.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 1 {
			fetchRetries.Inc()
		}

		if err := f.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("rate gate: %w", err)
		}

		err := f.attempt(ctx, what, op)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		lastErr = err
		switch {
		case errors.Is(err, ErrPageNotFound):
			return err
		case !errors.Is(err, ErrTransient):
			return fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}

		// Don't wait after the last attempt
		if attempt == f.retry.MaxAttempts {
			break
		}

		wait := calculateBackoff(backoff, f.retry.JitterFactor)
		f.logger.Debug("retrying fetch",
			"page", what,
			"attempt", attempt,
			"backoff", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		backoff = nextBackoff(backoff, f.retry.BackoffFactor, f.retry.MaxBackoff)
	}

	return fmt.Errorf("%w: %s after %d attempts: %w", ErrFetchFailed, what, f.retry.MaxAttempts, lastErr)
}

// attempt performs one request, converting a per-attempt timeout into a
// transient failure.
func (f *Fetcher) attempt(ctx context.Context, what string, op func(context.Context) error) error {
	f.requests.Add(1)

	if f.attemptTimeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	err := op(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: attempt timed out after %s", ErrTransient, what, f.attemptTimeout)
	}
	return err
}

// calculateBackoff calculates the actual backoff with jitter.
func calculateBackoff(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return base
	}

	// Range is [base * (1-jitter), base * (1+jitter)]
	jitter := (rand.Float64()*2 - 1) * jitterFactor //nolint:gosec // jitter does not need crypto randomness
	return time.Duration(float64(base) * (1.0 + jitter))
}

// nextBackoff calculates the next backoff value.
func nextBackoff(current time.Duration, factor float64, maxBackoff time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// fetchOutcome maps a Fetch error to its metric label.
func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrPageNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrRedirectCycle):
		return outcomeRedirectCycle
	case errors.Is(err, ErrFetchFailed):
		return outcomeFailed
	case isContextError(err):
		return outcomeCancelled
	default:
		return outcomeError
	}
}

// isContextError reports whether err comes from a cancelled or expired
// context.
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
