// Package crawler finds shortest link paths between wiki articles.
//
// # Architecture
//
// The package is built around the Searcher, which runs a breadth-first
// search over the article link graph. The graph is never built up front:
// a page's links are discovered only when the page is taken from the
// frontier and expanded.
//
// # Components
//
//   - Searcher: drives the search layer by layer and decides the outcome
//   - Parser: extracts the ordered, deduplicated article links of a page
//   - Registry: records each page once with its predecessor and depth, and
//     reconstructs paths by walking predecessors
//   - Observer: optional progress notifications, delivered asynchronously
//
// # Search states
//
// A search starts by registering the start page at depth 0. Each layer is
// then expanded in order until one of three terminal states:
//
//   - found: the target was registered (or a frontier page redirected to it)
//   - exhausted: a layer completed and discovered no new pages
//   - limit reached: the depth limit or the fetch budget was hit first
//
// Pages that cannot be fetched are listed in the result and otherwise
// treated as having no links. Only invalid arguments and cancellation are
// errors.
//
// # Concurrency
//
// Fetches inside a layer run concurrently up to the configured number of
// workers, all behind the Fetcher's shared rate gate. Their results are
// merged strictly in frontier order, so the result does not depend on
// which fetch finishes first.
//
// # Usage
//
//	parser, _ := crawler.NewParser("https://en.wikipedia.org")
//	searcher, err := crawler.NewSearcher(fetcher, parser,
//	    crawler.WithMaxDepth(6),
//	    crawler.WithWorkers(4),
//	)
//	result, err := searcher.Search(ctx, start, target)
package crawler
