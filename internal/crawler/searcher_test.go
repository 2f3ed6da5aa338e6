package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
	"github.com/Baykugan/Wiki-Crawler/internal/wiki"
)

// graphFetcher serves a hand-built link graph as rendered wiki pages.
type graphFetcher struct {
	links     map[string][]string
	redirects map[string]string
	failures  map[string]error
	delays    map[string]time.Duration

	mu      sync.Mutex
	fetched []string
}

func newGraphFetcher(links map[string][]string) *graphFetcher {
	return &graphFetcher{
		links:     links,
		redirects: make(map[string]string),
		failures:  make(map[string]error),
		delays:    make(map[string]time.Duration),
	}
}

func (g *graphFetcher) Fetch(ctx context.Context, id model.PageID) (*model.Page, error) {
	title := id.String()

	g.mu.Lock()
	g.fetched = append(g.fetched, title)
	g.mu.Unlock()

	if d := g.delays[title]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := g.failures[title]; err != nil {
		return nil, err
	}

	page := model.NewPage(id, nil)
	if to, ok := g.redirects[title]; ok {
		page.ID = model.MustParsePageID(to)
		page.Redirects = []model.PageID{id}
		title = to
	}

	out, ok := g.links[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wiki.ErrPageNotFound, title)
	}

	page.Body = renderLinks(out)
	page.ComputeHash()
	return page, nil
}

// renderLinks renders an article body linking to every title in links.
func renderLinks(links []string) []byte {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="mw-content-text">`)
	for _, link := range links {
		fmt.Fprintf(&sb, `<p><a href="/wiki/%s">%s</a></p>`, model.MustParsePageID(link).PathSegment(), link)
	}
	sb.WriteString(`</div></body></html>`)
	return []byte(sb.String())
}

// graphSource serves a link graph as a wiki.Source, so that searches can
// run on a real wiki.Fetcher.
type graphSource struct {
	links  map[string][]string
	delays map[string]time.Duration
}

func (g *graphSource) Fetch(ctx context.Context, id model.PageID) (*wiki.Document, error) {
	title := id.String()
	if d := g.delays[title]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out, ok := g.links[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wiki.ErrPageNotFound, title)
	}
	return &wiki.Document{ID: id, Body: renderLinks(out)}, nil
}

func (g *graphFetcher) fetchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.fetched)
}

// memoryCache is an in-memory LinkCache.
type memoryCache struct {
	mu       sync.Mutex
	pages    map[model.PageID]*model.PageLinks
	stored   []model.PageID
	deadEnds []model.PageID
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: make(map[model.PageID]*model.PageLinks)}
}

func (c *memoryCache) LoadPage(_ context.Context, id model.PageID) (*model.PageLinks, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[id], nil
}

func (c *memoryCache) StorePage(_ context.Context, links *model.PageLinks) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = append(c.stored, links.ID)
	return nil
}

func (c *memoryCache) MarkDeadEnd(_ context.Context, id model.PageID, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadEnds = append(c.deadEnds, id)
	return nil
}

func newTestSearcher(t *testing.T, fetcher PageFetcher, opts ...SearcherOption) *Searcher {
	t.Helper()

	s, err := NewSearcher(fetcher, newTestParser(t), opts...)
	if err != nil {
		t.Fatalf("failed to create searcher: %v", err)
	}
	return s
}

func search(t *testing.T, s *Searcher, start, target string) (*model.SearchResult, *Registry) {
	t.Helper()

	result, registry, err := s.search(context.Background(), model.MustParsePageID(start), model.MustParsePageID(target))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result, registry
}

// checkDepthInvariant verifies every record sits one layer below its
// predecessor.
func checkDepthInvariant(t *testing.T, r *Registry) {
	t.Helper()

	starts := 0
	for _, rec := range r.Records() {
		if rec.IsStart() {
			starts++
			if rec.Depth != 0 {
				t.Errorf("expected start %s at depth 0, got %d", rec.ID, rec.Depth)
			}
			continue
		}
		pred, ok := r.Get(rec.Predecessor)
		if !ok {
			t.Errorf("predecessor %s of %s is not registered", rec.Predecessor, rec.ID)
			continue
		}
		if rec.Depth != pred.Depth+1 {
			t.Errorf("expected %s at depth %d, got %d", rec.ID, pred.Depth+1, rec.Depth)
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one start record, got %d", starts)
	}
}

// TestSearchShortestPath tests that the shortest path wins.
func TestSearchShortestPath(t *testing.T) {
	t.Parallel()

	t.Run("direct link beats a detour", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"A": {"B", "C"},
			"B": {"C"},
			"C": {},
		})
		result, registry := search(t, newTestSearcher(t, f), "A", "C")

		if result.Outcome != model.OutcomeFound {
			t.Fatalf("expected found, got %v", result.Outcome)
		}
		if got := titles(result.Path); !equalTitles(got, []string{"A", "C"}) {
			t.Errorf("expected [A C], got %v", got)
		}
		if result.Depth != 1 || result.Hops() != 1 {
			t.Errorf("expected depth 1, got %d (hops %d)", result.Depth, result.Hops())
		}
		checkDepthInvariant(t, registry)
	})

	t.Run("link order of A does not matter", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"A": {"C", "B"},
			"B": {"C"},
		})
		result, _ := search(t, newTestSearcher(t, f), "A", "C")
		if got := titles(result.Path); !equalTitles(got, []string{"A", "C"}) {
			t.Errorf("expected [A C], got %v", got)
		}
	})

	t.Run("minimal hop count in a larger graph", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"S": {"A", "B"},
			"A": {"D"},
			"B": {"C"},
			"C": {"T"},
			"D": {"E"},
			"E": {"F"},
			"F": {"T"},
			"T": {},
		})
		result, registry := search(t, newTestSearcher(t, f), "S", "T")

		if got := titles(result.Path); !equalTitles(got, []string{"S", "B", "C", "T"}) {
			t.Errorf("expected [S B C T], got %v", got)
		}
		checkDepthInvariant(t, registry)

		again, err := registry.ReconstructPath(model.MustParsePageID("T"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !equalTitles(titles(again), titles(result.Path)) {
			t.Errorf("expected reconstruction to be idempotent, got %v", titles(again))
		}
	})

	t.Run("ties break by frontier order despite fetch timing", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"S": {"A", "B"},
			"A": {"X"},
			"B": {"Y"},
			"X": {"T"},
			"Y": {"T"},
		})
		f.delays["A"] = 30 * time.Millisecond
		f.delays["X"] = 30 * time.Millisecond

		result, registry := search(t, newTestSearcher(t, f, WithWorkers(8)), "S", "T")
		if got := titles(result.Path); !equalTitles(got, []string{"S", "A", "X", "T"}) {
			t.Errorf("expected [S A X T], got %v", got)
		}
		checkDepthInvariant(t, registry)
	})
}

// TestSearchTerminalStates tests the not-found outcomes.
func TestSearchTerminalStates(t *testing.T) {
	t.Parallel()

	t.Run("start equals target needs no fetch", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{"A": {"B"}})
		result, _ := search(t, newTestSearcher(t, f), "A", "a")

		if !result.Found() {
			t.Fatalf("expected found, got %v", result.Outcome)
		}
		if got := titles(result.Path); !equalTitles(got, []string{"A"}) {
			t.Errorf("expected [A], got %v", got)
		}
		if f.fetchCount() != 0 || result.PagesFetched != 0 {
			t.Errorf("expected zero fetches, got %d", f.fetchCount())
		}
	})

	t.Run("unreachable within max depth is limit reached", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"A": {"B"},
			"B": {"C"},
			"C": {"D"},
			"D": {"E"},
			"E": {},
		})
		result, registry := search(t, newTestSearcher(t, f, WithMaxDepth(2)), "A", "E")

		if result.Outcome != model.OutcomeLimitReached {
			t.Fatalf("expected limit reached, got %v", result.Outcome)
		}
		if result.Depth != 2 {
			t.Errorf("expected depth 2, got %d", result.Depth)
		}
		if result.Path != nil {
			t.Errorf("expected no path, got %v", result.Path)
		}
		checkDepthInvariant(t, registry)
	})

	t.Run("closed graph is exhausted", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"A": {"B", "C"},
			"B": {"A"},
			"C": {"B"},
		})
		result, registry := search(t, newTestSearcher(t, f), "A", "Z")

		if result.Outcome != model.OutcomeExhausted {
			t.Fatalf("expected exhausted, got %v", result.Outcome)
		}
		if result.Depth != 1 {
			t.Errorf("expected depth 1, got %d", result.Depth)
		}
		if result.PagesFetched != 3 || result.PagesDiscovered != 3 {
			t.Errorf("expected 3 fetched and discovered, got %d and %d", result.PagesFetched, result.PagesDiscovered)
		}
		checkDepthInvariant(t, registry)
	})

	t.Run("fetch budget is limit reached", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"S": {"A", "B", "C"},
			"A": {"D"},
			"B": {"E"},
			"C": {"T"},
		})
		result, _ := search(t, newTestSearcher(t, f, WithMaxPagesFetched(2), WithWorkers(1)), "S", "T")

		if result.Outcome != model.OutcomeLimitReached {
			t.Fatalf("expected limit reached, got %v", result.Outcome)
		}
		if result.PagesFetched != 2 || f.fetchCount() != 2 {
			t.Errorf("expected 2 fetches, got %d (fetcher saw %d)", result.PagesFetched, f.fetchCount())
		}
	})

	t.Run("cancelled context is an error", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{"A": {"B"}})
		s := newTestSearcher(t, f)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Search(ctx, model.MustParsePageID("A"), model.MustParsePageID("B"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestSearchFailures tests that page failures degrade gracefully.
func TestSearchFailures(t *testing.T) {
	t.Parallel()

	t.Run("failed pages contribute no links", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"S": {"A", "Missing", "B"},
			"A": {"T"},
			"B": {"T"},
		})
		f.failures["A"] = fmt.Errorf("%w: A after 4 attempts", wiki.ErrFetchFailed)

		result, _ := search(t, newTestSearcher(t, f), "S", "T")

		if got := titles(result.Path); !equalTitles(got, []string{"S", "B", "T"}) {
			t.Errorf("expected [S B T], got %v", got)
		}
		if len(result.Unreachable) != 2 {
			t.Fatalf("expected 2 unreachable pages, got %+v", result.Unreachable)
		}
		if result.Unreachable[0].ID != model.MustParsePageID("A") || result.Unreachable[0].Depth != 1 {
			t.Errorf("unexpected first unreachable page %+v", result.Unreachable[0])
		}
		if result.Unreachable[1].ID != model.MustParsePageID("Missing") {
			t.Errorf("unexpected second unreachable page %+v", result.Unreachable[1])
		}
	})

	t.Run("redirect to the target ends the search", func(t *testing.T) {
		t.Parallel()

		f := newGraphFetcher(map[string][]string{
			"S":             {"USA", "B"},
			"B":             {"United States"},
			"United States": {},
		})
		f.redirects["USA"] = "United States"

		result, _ := search(t, newTestSearcher(t, f), "S", "United States")
		if got := titles(result.Path); !equalTitles(got, []string{"S", "United States"}) {
			t.Errorf("expected [S United States], got %v", got)
		}
	})
}

// TestSearchLinkCache tests the link cache integration.
func TestSearchLinkCache(t *testing.T) {
	t.Parallel()

	f := newGraphFetcher(map[string][]string{
		"A": {"Nowhere"},
		"B": {"T"},
	})
	cache := newMemoryCache()
	cache.pages[model.MustParsePageID("S")] = &model.PageLinks{
		ID:        model.MustParsePageID("S"),
		Canonical: model.MustParsePageID("S"),
		Links:     []model.PageID{model.MustParsePageID("A"), model.MustParsePageID("Dead"), model.MustParsePageID("B")},
	}
	cache.pages[model.MustParsePageID("Dead")] = &model.PageLinks{
		ID: model.MustParsePageID("Dead"), DeadEnd: true, Reason: "page not found",
	}

	s := newTestSearcher(t, f, WithLinkCache(cache), WithMaxPagesFetched(2), WithWorkers(1))
	result, _ := search(t, s, "S", "T")

	if got := titles(result.Path); !equalTitles(got, []string{"S", "B", "T"}) {
		t.Fatalf("expected [S B T], got %v", got)
	}
	if result.CacheHits != 2 {
		t.Errorf("expected 2 cache hits, got %d", result.CacheHits)
	}
	if result.PagesFetched != 2 {
		t.Errorf("expected cache hits not to count as fetches, got %d", result.PagesFetched)
	}
	if len(cache.stored) != 2 {
		t.Errorf("expected fetched pages to be stored, got %v", cache.stored)
	}
}

// TestSearchDeadEndsAreCached tests that missing pages are recorded.
func TestSearchDeadEndsAreCached(t *testing.T) {
	t.Parallel()

	f := newGraphFetcher(map[string][]string{"S": {"Gone"}})
	cache := newMemoryCache()

	result, _ := search(t, newTestSearcher(t, f, WithLinkCache(cache)), "S", "T")
	if result.Outcome != model.OutcomeExhausted {
		t.Fatalf("expected exhausted, got %v", result.Outcome)
	}
	if len(cache.deadEnds) != 1 || cache.deadEnds[0] != model.MustParsePageID("Gone") {
		t.Errorf("expected Gone to be a dead end, got %v", cache.deadEnds)
	}
}

// TestSearchSharedFetcher tests two searches running at once on one
// fetcher. The first search stops as soon as it finds its target, which
// must not cost the second search a page both were waiting for.
func TestSearchSharedFetcher(t *testing.T) {
	t.Parallel()

	src := &graphSource{
		links: map[string][]string{
			"S":  {"A", "B"},
			"A":  {"T1"},
			"B":  {"T2"},
			"T1": {},
			"T2": {},
		},
		delays: map[string]time.Duration{
			"A": 50 * time.Millisecond,
			"B": 300 * time.Millisecond,
		},
	}
	fetcher := wiki.NewFetcher(src)
	s := newTestSearcher(t, fetcher, WithWorkers(2))

	type searchOutput struct {
		result *model.SearchResult
		err    error
	}
	run := func(target string, after time.Duration) <-chan searchOutput {
		out := make(chan searchOutput, 1)
		go func() {
			time.Sleep(after)
			result, err := s.Search(context.Background(), model.MustParsePageID("S"), model.MustParsePageID(target))
			out <- searchOutput{result, err}
		}()
		return out
	}
	first := run("T1", 0)
	second := run("T2", 20*time.Millisecond)

	for _, tt := range []struct {
		out  <-chan searchOutput
		want []string
	}{
		{first, []string{"S", "A", "T1"}},
		{second, []string{"S", "B", "T2"}},
	} {
		got := <-tt.out
		if got.err != nil {
			t.Fatalf("unexpected error: %v", got.err)
		}
		if got.result.Outcome != model.OutcomeFound {
			t.Fatalf("expected found for %v, got %v (unreachable %v)", tt.want, got.result.Outcome, got.result.Unreachable)
		}
		if path := titles(got.result.Path); !equalTitles(path, tt.want) {
			t.Errorf("expected path %v, got %v", tt.want, path)
		}
	}
}

// TestSearchObserver tests progress notifications.
func TestSearchObserver(t *testing.T) {
	t.Parallel()

	f := newGraphFetcher(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {},
	})
	events := make(chan Progress, 64)
	s := newTestSearcher(t, f, WithObserver(ObserverFunc(func(p Progress) {
		events <- p
	})))

	result, _ := search(t, s, "A", "Z")
	if result.Outcome != model.OutcomeExhausted {
		t.Fatalf("expected exhausted, got %v", result.Outcome)
	}

	want := result.PagesProcessed + 3
	var got []Progress
	timeout := time.After(2 * time.Second)
	for len(got) < want {
		select {
		case p := <-events:
			got = append(got, p)
		case <-timeout:
			t.Fatalf("expected %d events, got %d", want, len(got))
		}
	}

	layers := 0
	for _, p := range got {
		if p.Kind == EventLayerCompleted {
			if p.Depth != layers {
				t.Errorf("expected layer %d, got %d", layers, p.Depth)
			}
			layers++
		}
	}
	if layers != 3 {
		t.Errorf("expected 3 layer events, got %d", layers)
	}
	last := got[len(got)-1]
	if last.Kind != EventLayerCompleted || last.FrontierSize != 0 || last.PagesProcessed != 3 {
		t.Errorf("unexpected last event %+v", last)
	}
}

// TestSearchSlowObserver tests that a blocked observer does not stall the
// search.
func TestSearchSlowObserver(t *testing.T) {
	t.Parallel()

	links := map[string][]string{"S": {}}
	for i := range 400 {
		name := fmt.Sprintf("P%d", i)
		links["S"] = append(links["S"], name)
		links[name] = []string{}
	}
	f := newGraphFetcher(links)

	block := make(chan struct{})
	defer close(block)
	s := newTestSearcher(t, f, WithWorkers(16), WithObserver(ObserverFunc(func(Progress) {
		<-block
	})))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Search(context.Background(), model.MustParsePageID("S"), model.MustParsePageID("T"))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("search blocked on the observer")
	}
}

// TestSearchObserverDrained tests that every event reaches the observer
// before Search returns.
func TestSearchObserverDrained(t *testing.T) {
	t.Parallel()

	f := newGraphFetcher(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {},
	})
	var delivered atomic.Int64
	s := newTestSearcher(t, f, WithObserver(ObserverFunc(func(Progress) {
		time.Sleep(5 * time.Millisecond)
		delivered.Add(1)
	})))

	result, err := s.Search(context.Background(), model.MustParsePageID("A"), model.MustParsePageID("Z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One event per processed page and one per completed layer.
	want := int64(result.PagesProcessed + 3)
	if got := delivered.Load(); got != want {
		t.Errorf("expected %d events delivered on return, got %d", want, got)
	}
	time.Sleep(20 * time.Millisecond)
	if got := delivered.Load(); got != want {
		t.Errorf("expected no events after return, got %d more", got-want)
	}
}

// TestNewSearcher tests option validation.
func TestNewSearcher(t *testing.T) {
	t.Parallel()

	f := newGraphFetcher(nil)
	parser := newTestParser(t)

	tests := []struct {
		name string
		opts []SearcherOption
	}{
		{"negative depth", []SearcherOption{WithMaxDepth(-1)}},
		{"negative budget", []SearcherOption{WithMaxPagesFetched(-1)}},
		{"no workers", []SearcherOption{WithWorkers(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewSearcher(f, parser, tt.opts...); !errors.Is(err, ErrInvalidSearch) {
				t.Errorf("expected ErrInvalidSearch, got %v", err)
			}
		})
	}

	if _, err := NewSearcher(nil, parser); !errors.Is(err, ErrInvalidSearch) {
		t.Errorf("expected ErrInvalidSearch for nil fetcher, got %v", err)
	}

	s, err := NewSearcher(f, parser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Search(context.Background(), model.PageID{}, pageA); !errors.Is(err, ErrInvalidSearch) {
		t.Errorf("expected ErrInvalidSearch for zero start, got %v", err)
	}
}
