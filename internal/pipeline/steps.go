package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Baykugan/Wiki-Crawler/internal/database"
	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// ErrNoRandomSource is returned when a job has no start page and the
// resolve step cannot pick a random one.
var ErrNoRandomSource = errors.New("no start page given and no source for a random page")

// Resolver follows redirects to the canonical article of a page.
// *wiki.Fetcher implements it.
type Resolver interface {
	Resolve(ctx context.Context, id model.PageID) (model.PageID, error)
}

// RandomSource picks a random article. *wiki.Fetcher implements it, so the
// pick shares the fetcher's rate limit and retries.
type RandomSource interface {
	RandomTitle(ctx context.Context) (model.PageID, error)
}

// Searcher finds a shortest link path. *crawler.Searcher implements it.
type Searcher interface {
	Search(ctx context.Context, start, target model.PageID) (*model.SearchResult, error)
}

// PathStore saves finished searches. *database.WikiDB implements it.
type PathStore interface {
	SavePath(ctx context.Context, rec *database.PathRecord) (int64, error)
}

// ResolveStep turns the raw titles of a job into page identifiers.
//
// An empty start input is replaced by a random article. With a resolver
// configured, the start and target are then resolved to their canonical
// articles, so a search for a redirect title ends at the article a reader
// would land on.
type ResolveStep struct {
	// resolver canonicalizes titles. Nil skips canonicalization.
	resolver Resolver

	// random picks the start page when none was given.
	random RandomSource

	// baseURL is recorded on the job so reports can link the articles.
	baseURL string

	// logger for structured logging.
	logger *slog.Logger
}

// ResolveStepOption configures a ResolveStep.
type ResolveStepOption func(*ResolveStep)

// WithResolver enables canonical resolution of start and target.
func WithResolver(r Resolver) ResolveStepOption {
	return func(s *ResolveStep) {
		s.resolver = r
	}
}

// WithRandomSource sets where random start pages come from.
func WithRandomSource(r RandomSource) ResolveStepOption {
	return func(s *ResolveStep) {
		s.random = r
	}
}

// WithBaseURL sets the wiki base URL recorded on each job.
func WithBaseURL(baseURL string) ResolveStepOption {
	return func(s *ResolveStep) {
		s.baseURL = baseURL
	}
}

// WithResolveLogger sets a custom logger for the resolve step.
func WithResolveLogger(logger *slog.Logger) ResolveStepOption {
	return func(s *ResolveStep) {
		s.logger = logger
	}
}

// NewResolveStep creates a new resolve step.
func NewResolveStep(opts ...ResolveStepOption) *ResolveStep {
	s := &ResolveStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(ctx context.Context, job *model.SearchJob) error {
	target, err := model.ParsePageID(job.TargetInput)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	var start model.PageID
	if job.StartInput == "" {
		if s.random == nil {
			return ErrNoRandomSource
		}
		if start, err = s.random.RandomTitle(ctx); err != nil {
			return fmt.Errorf("failed to pick a random start page: %w", err)
		}
		s.logger.Info("picked random start page", "page", start)
	} else if start, err = model.ParsePageID(job.StartInput); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if s.resolver != nil {
		if start, err = s.canonical(ctx, start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if target, err = s.canonical(ctx, target); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}

	job.Start = start
	job.Target = target
	if s.baseURL != "" {
		job.BaseURL = s.baseURL
	}
	return nil
}

// canonical resolves id and logs when it was a redirect.
func (s *ResolveStep) canonical(ctx context.Context, id model.PageID) (model.PageID, error) {
	resolved, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return model.PageID{}, err
	}
	if resolved != id {
		s.logger.Info("resolved redirect", "page", id, "canonical", resolved)
	}
	return resolved, nil
}

// SearchStep runs the link search between the resolved pages.
type SearchStep struct {
	searcher Searcher
	logger   *slog.Logger
}

// SearchStepOption configures a SearchStep.
type SearchStepOption func(*SearchStep)

// WithSearchStepLogger sets a custom logger for the search step.
func WithSearchStepLogger(logger *slog.Logger) SearchStepOption {
	return func(s *SearchStep) {
		s.logger = logger
	}
}

// NewSearchStep creates a new search step.
func NewSearchStep(searcher Searcher, opts ...SearchStepOption) *SearchStep {
	s := &SearchStep{
		searcher: searcher,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step.
func (s *SearchStep) Do(ctx context.Context, job *model.SearchJob) error {
	if job.Start.IsZero() || job.Target.IsZero() {
		return errors.New("search step needs a resolved start and target")
	}

	result, err := s.searcher.Search(ctx, job.Start, job.Target)
	if err != nil {
		return err
	}
	job.Result = result

	s.logger.Info("search finished",
		"job", job.Label(),
		"outcome", result.Outcome,
		"hops", result.Hops(),
		"fetched", result.PagesFetched,
	)
	return nil
}

// PersistStep saves the search outcome to the history database.
//
// Design decision: A failed save is logged and not returned, because the
// search result is still valid and should be reported.
type PersistStep struct {
	store  PathStore
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persist step.
func NewPersistStep(store PathStore, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, job *model.SearchJob) error {
	if job.Result == nil {
		s.logger.Debug("nothing to persist", "job", job.Label())
		return nil
	}

	id, err := s.store.SavePath(ctx, database.NewPathRecord(job.Start, job.Target, job.Result))
	if err != nil {
		s.logger.Warn("failed to save search", "job", job.Label(), "error", err)
		return nil
	}
	job.PathID = id
	return nil
}

// DefaultPipelineConfig holds the collaborators of the default pipeline.
type DefaultPipelineConfig struct {
	// Searcher runs the search. Required.
	Searcher Searcher

	// Resolver canonicalizes the start and target. Optional.
	Resolver Resolver

	// Random picks random start pages. Optional.
	Random RandomSource

	// Store saves finished searches. Nil leaves out the persist step.
	Store PathStore

	// BaseURL is the wiki the search runs against, recorded for reports.
	BaseURL string

	// Logger is passed to every step. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultPipeline creates the resolve, search and persist pipeline.
//
// The first parameter holds the step collaborators, the variadic parameter
// accepts pipeline options (WithLogger, etc).
func DefaultPipeline(cfg DefaultPipelineConfig, pipelineOpts ...Option) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := New(append([]Option{WithLogger(logger)}, pipelineOpts...)...)

	resolveOpts := []ResolveStepOption{
		WithResolveLogger(logger),
		WithBaseURL(cfg.BaseURL),
	}
	if cfg.Resolver != nil {
		resolveOpts = append(resolveOpts, WithResolver(cfg.Resolver))
	}
	if cfg.Random != nil {
		resolveOpts = append(resolveOpts, WithRandomSource(cfg.Random))
	}

	p.AddSteps(
		NewResolveStep(resolveOpts...),
		NewSearchStep(cfg.Searcher, WithSearchStepLogger(logger)),
	)
	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store, WithPersistLogger(logger)))
	}

	return p
}
