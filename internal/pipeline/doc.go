// Package pipeline runs a search request through its stages.
//
// A job passes through three steps: resolve (parse the raw titles, pick a
// random start page, follow redirects to the canonical articles), search
// (the breadth-first link search) and persist (save the outcome to the
// history database). Each step receives the job filled in by the previous
// ones.
//
// Design decision: Keeping resolution and persistence out of the searcher
// lets the searcher stay a pure function of its fetcher and options, and
// lets the CLI drop the persist step when no database is configured.
//
// BatchProcessor runs one job per target concurrently with errgroup. All
// jobs share one fetcher, and therefore one rate limiter.
package pipeline
