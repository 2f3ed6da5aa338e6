package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
	"github.com/Baykugan/Wiki-Crawler/internal/wiki"
)

// ErrInvalidSearch is returned for invalid searcher options or arguments.
var ErrInvalidSearch = errors.New("invalid search")

const (
	// DefaultMaxDepth is the default limit on path length.
	// Most article pairs on English Wikipedia are within 4 to 6 hops.
	DefaultMaxDepth = 6

	// DefaultMaxPagesFetched is the default ceiling on network fetches.
	DefaultMaxPagesFetched = 5000

	// DefaultWorkers is the default number of concurrent fetches per layer.
	DefaultWorkers = 4
)

// PageFetcher retrieves the canonical article for a title.
// *wiki.Fetcher is the production implementation.
type PageFetcher interface {
	Fetch(ctx context.Context, id model.PageID) (*model.Page, error)
}

// LinkCache stores the links of expanded pages between runs.
// LoadPage returns nil and no error for pages it has never seen.
type LinkCache interface {
	LoadPage(ctx context.Context, id model.PageID) (*model.PageLinks, error)
	StorePage(ctx context.Context, links *model.PageLinks) error
	MarkDeadEnd(ctx context.Context, id model.PageID, reason string) error
}

// Searcher finds a shortest link path between two articles by expanding
// the link graph breadth-first, one layer at a time.
//
// Pages of one layer are fetched concurrently but merged into the Registry
// strictly in frontier order, and a layer is fully merged before the next
// begins. That keeps every page at the depth it was first reachable at and
// makes results reproducible regardless of fetch timing.
type Searcher struct {
	fetcher  PageFetcher
	parser   *Parser
	cache    LinkCache
	maxDepth int
	maxPages int
	workers  int
	observer Observer
	logger   *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithMaxDepth sets the longest path searched for.
func WithMaxDepth(depth int) SearcherOption {
	return func(s *Searcher) {
		s.maxDepth = depth
	}
}

// WithMaxPagesFetched sets the ceiling on network fetches per search.
// Zero means no ceiling. Pages served from the link cache do not count.
func WithMaxPagesFetched(n int) SearcherOption {
	return func(s *Searcher) {
		s.maxPages = n
	}
}

// WithWorkers sets how many pages of a layer are fetched at once.
func WithWorkers(n int) SearcherOption {
	return func(s *Searcher) {
		s.workers = n
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) SearcherOption {
	return func(s *Searcher) {
		s.observer = o
	}
}

// WithLinkCache sets the cache consulted before fetching a page.
func WithLinkCache(c LinkCache) SearcherOption {
	return func(s *Searcher) {
		s.cache = c
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a Searcher that fetches pages with fetcher and reads
// their links with parser.
func NewSearcher(fetcher PageFetcher, parser *Parser, opts ...SearcherOption) (*Searcher, error) {
	s := &Searcher{
		fetcher:  fetcher,
		parser:   parser,
		maxDepth: DefaultMaxDepth,
		maxPages: DefaultMaxPagesFetched,
		workers:  DefaultWorkers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case fetcher == nil || parser == nil:
		return nil, fmt.Errorf("%w: fetcher and parser are required", ErrInvalidSearch)
	case s.maxDepth < 0:
		return nil, fmt.Errorf("%w: max depth must be non-negative, got %d", ErrInvalidSearch, s.maxDepth)
	case s.maxPages < 0:
		return nil, fmt.Errorf("%w: max pages must be non-negative, got %d", ErrInvalidSearch, s.maxPages)
	case s.workers < 1:
		return nil, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidSearch, s.workers)
	}
	return s, nil
}

// Search looks for a shortest path from start to target.
//
// Every terminal state is a result: found, exhausted or limit reached. Page
// fetch failures only remove that page's links from the search and are
// listed in the result. The only errors are invalid arguments and
// cancellation of ctx, which is checked between layers and aborts in-flight
// fetches.
func (s *Searcher) Search(ctx context.Context, start, target model.PageID) (*model.SearchResult, error) {
	result, _, err := s.search(ctx, start, target)
	return result, err
}

// search runs one search and also returns its registry.
func (s *Searcher) search(ctx context.Context, start, target model.PageID) (*model.SearchResult, *Registry, error) {
	if start.IsZero() || target.IsZero() {
		return nil, nil, fmt.Errorf("%w: start and target are required", ErrInvalidSearch)
	}

	run := &searchRun{
		s:        s,
		target:   target,
		registry: NewRegistry(),
		events:   newAsyncObserver(s.observer),
		began:    time.Now(),
	}
	defer run.events.close()

	run.registry.RegisterIfNew(start, model.PageID{}, 0)
	if start == target {
		return run.finish(model.OutcomeFound, []model.PageID{start}), run.registry, nil
	}

	frontier := []model.PageID{start}
	for depth := 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			searchTotal.WithLabelValues("cancelled").Inc()
			return nil, run.registry, err
		}
		if depth >= s.maxDepth {
			return run.finish(model.OutcomeLimitReached, nil), run.registry, nil
		}

		layerSize.Observe(float64(len(frontier)))
		s.logger.Debug("expanding layer", "depth", depth, "frontier", len(frontier))

		next, path, err := run.expandLayer(ctx, frontier, depth)
		if err != nil {
			searchTotal.WithLabelValues("cancelled").Inc()
			return nil, run.registry, err
		}
		if path != nil {
			return run.finish(model.OutcomeFound, path), run.registry, nil
		}

		run.events.notify(Progress{
			Kind:           EventLayerCompleted,
			PagesProcessed: run.processed,
			PagesFetched:   int(run.fetched.Load()),
			Depth:          depth,
			FrontierSize:   len(next),
		})
		s.logger.Info("layer completed",
			"depth", depth,
			"frontier", len(next),
			"fetched", run.fetched.Load())

		if run.budgetHit.Load() {
			return run.finish(model.OutcomeLimitReached, nil), run.registry, nil
		}
		if len(next) == 0 {
			return run.finish(model.OutcomeExhausted, nil), run.registry, nil
		}
		frontier = next
	}
}

// searchRun is the state of one search.
type searchRun struct {
	s        *Searcher
	target   model.PageID
	registry *Registry
	events   *asyncObserver
	began    time.Time

	// fetched and budgetHit are written by the layer dispatcher.
	fetched   atomic.Int64
	budgetHit atomic.Bool

	// The remaining fields are only touched by the merging goroutine.
	processed   int
	cacheHits   int
	unreachable []model.Unreachable
}

// pageOutcome is the result of expanding one frontier page.
type pageOutcome struct {
	id        model.PageID
	links     *model.PageLinks
	fromCache bool
	skipped   bool
	err       error
}

// expandLayer expands every page of frontier and returns the next layer, or
// the path as soon as the target is registered.
//
// A dispatcher goroutine walks the frontier in order, answers pages from the
// link cache, reserves the fetch budget and hands the rest to a bounded
// errgroup. Each page has its own result channel, so the merge below can
// consume results in frontier order while fetches complete in any order.
func (r *searchRun) expandLayer(ctx context.Context, frontier []model.PageID, depth int) ([]model.PageID, []model.PageID, error) {
	layerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]chan pageOutcome, len(frontier))
	for i := range outcomes {
		outcomes[i] = make(chan pageOutcome, 1)
	}

	var g errgroup.Group
	g.SetLimit(r.s.workers)

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for i, id := range frontier {
			r.dispatch(layerCtx, &g, id, outcomes[i])
		}
	}()

	var next, path []model.PageID
	for i := range frontier {
		path = r.merge(ctx, <-outcomes[i], depth, len(frontier), &next)
		if path != nil {
			break
		}
	}

	// Stop the rest of the layer once the target is found.
	cancel()
	<-dispatched
	_ = g.Wait()

	if path == nil {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}
	return next, path, nil
}

// dispatch answers id from the cache or schedules its fetch.
func (r *searchRun) dispatch(ctx context.Context, g *errgroup.Group, id model.PageID, out chan<- pageOutcome) {
	if ctx.Err() != nil {
		out <- pageOutcome{id: id, skipped: true}
		return
	}

	if links := r.lookupCache(ctx, id); links != nil {
		out <- pageOutcome{id: id, links: links, fromCache: true}
		return
	}

	if r.s.maxPages > 0 && r.fetched.Load() >= int64(r.s.maxPages) {
		r.budgetHit.Store(true)
		out <- pageOutcome{id: id, skipped: true}
		return
	}
	r.fetched.Add(1)

	g.Go(func() error {
		out <- r.fetch(ctx, id)
		return nil
	})
}

// fetch retrieves one page and extracts its links.
func (r *searchRun) fetch(ctx context.Context, id model.PageID) pageOutcome {
	page, err := r.s.fetcher.Fetch(ctx, id)
	if err != nil {
		return pageOutcome{id: id, err: err}
	}

	return pageOutcome{
		id: id,
		links: &model.PageLinks{
			ID:        id,
			Canonical: page.ID,
			Links:     r.s.parser.ExtractLinks(page.Body, page.ID),
			Hash:      page.Hash,
			FetchedAt: page.FetchedAt,
		},
	}
}

// lookupCache returns the cached links of id, or nil.
func (r *searchRun) lookupCache(ctx context.Context, id model.PageID) *model.PageLinks {
	if r.s.cache == nil {
		return nil
	}

	links, err := r.s.cache.LoadPage(ctx, id)
	switch {
	case err != nil:
		if ctx.Err() == nil {
			cacheLookups.WithLabelValues("error").Inc()
			r.s.logger.Warn("link cache lookup failed", "page", id, "error", err)
		}
		return nil
	case links == nil:
		cacheLookups.WithLabelValues("miss").Inc()
		return nil
	default:
		cacheLookups.WithLabelValues("hit").Inc()
		return links
	}
}

// merge registers the links of one expanded page. It returns the path when
// the target was reached.
func (r *searchRun) merge(ctx context.Context, out pageOutcome, depth, layer int, next *[]model.PageID) []model.PageID {
	if out.skipped {
		return nil
	}
	if out.err != nil {
		// A fetch aborted by cancellation says nothing about the page.
		if ctx.Err() != nil {
			return nil
		}
		r.recordUnreachable(ctx, out.id, depth, out.err)
		r.pageDone(out.id, depth, layer)
		return nil
	}

	if out.fromCache {
		r.cacheHits++
		if out.links.DeadEnd {
			r.unreachable = append(r.unreachable, model.Unreachable{
				ID: out.id, Depth: depth, Reason: "dead end: " + out.links.Reason,
			})
			r.pageDone(out.id, depth, layer)
			return nil
		}
	} else if r.s.cache != nil {
		if err := r.s.cache.StorePage(ctx, out.links); err != nil {
			r.s.logger.Warn("failed to cache links", "page", out.id, "error", err)
		}
	}
	defer r.pageDone(out.id, depth, layer)

	// A page that redirects to the target reaches it with one hop less
	// than a link to the target would.
	if out.links.Canonical == r.target {
		path, err := r.registry.ReconstructPath(out.id)
		if err != nil {
			r.s.logger.Error("broken predecessor chain", "page", out.id, "error", err)
			return nil
		}
		path[len(path)-1] = r.target
		return path
	}

	for _, link := range out.links.Links {
		if _, inserted := r.registry.RegisterIfNew(link, out.id, depth+1); !inserted {
			continue
		}
		*next = append(*next, link)

		if link == r.target {
			path, err := r.registry.ReconstructPath(link)
			if err != nil {
				r.s.logger.Error("broken predecessor chain", "page", link, "error", err)
				return nil
			}
			return path
		}
	}
	return nil
}

// recordUnreachable notes a page that contributes no links.
func (r *searchRun) recordUnreachable(ctx context.Context, id model.PageID, depth int, err error) {
	r.unreachable = append(r.unreachable, model.Unreachable{ID: id, Depth: depth, Reason: err.Error()})
	r.s.logger.Warn("page unreachable", "page", id, "depth", depth, "error", err)

	if r.s.cache != nil && errors.Is(err, wiki.ErrPageNotFound) {
		if cacheErr := r.s.cache.MarkDeadEnd(ctx, id, err.Error()); cacheErr != nil {
			r.s.logger.Warn("failed to record dead end", "page", id, "error", cacheErr)
		}
	}
}

// pageDone counts a merged page and notifies the observer.
func (r *searchRun) pageDone(id model.PageID, depth, layer int) {
	r.processed++
	r.events.notify(Progress{
		Kind:           EventPageProcessed,
		Page:           id,
		PagesProcessed: r.processed,
		PagesFetched:   int(r.fetched.Load()),
		Depth:          depth,
		FrontierSize:   layer,
	})
}

// finish builds the result of a terminal state.
func (r *searchRun) finish(outcome model.Outcome, path []model.PageID) *model.SearchResult {
	depth := r.registry.MaxDepth()
	if outcome == model.OutcomeFound {
		depth = len(path) - 1
	}

	result := &model.SearchResult{
		Outcome:         outcome,
		Path:            path,
		Depth:           depth,
		PagesFetched:    int(r.fetched.Load()),
		PagesProcessed:  r.processed,
		PagesDiscovered: r.registry.Len(),
		CacheHits:       r.cacheHits,
		Unreachable:     r.unreachable,
		Duration:        time.Since(r.began),
	}

	searchTotal.WithLabelValues(outcome.String()).Inc()
	if dropped := r.events.droppedCount(); dropped > 0 {
		r.s.logger.Debug("progress events dropped", "count", dropped)
	}
	r.s.logger.Info("search finished",
		"outcome", outcome,
		"depth", depth,
		"fetched", result.PagesFetched,
		"discovered", result.PagesDiscovered)
	return result
}
