// Package wiki retrieves article content from a wiki.
//
// A Source answers one request for one title: content, not found, transient
// failure, or a redirect to another title. Two sources are provided:
// HTTPSource talks to a live MediaWiki site and MirrorSource reads a
// directory of saved HTML pages.
//
// The Fetcher sits on top of a Source and is what the searcher calls. It
// adds the behaviour a polite crawler needs:
//   - a rate gate shared by every fetch in the process (golang.org/x/time/rate)
//   - retries with exponential backoff for transient failures
//   - a per-attempt timeout that counts as a transient failure
//   - transparent redirect resolution with a bounded hop count
//   - collapsing of concurrent fetches for the same title (singleflight)
//
// The package is designed to be used with dependency injection: build one
// Client, one Source and one Fetcher and pass them to the components that
// need them rather than using global state.
package wiki
