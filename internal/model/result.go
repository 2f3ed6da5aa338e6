package model

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of one search.
type Outcome int

const (
	// OutcomeFound means a path from start to target was found.
	OutcomeFound Outcome = iota

	// OutcomeExhausted means every page reachable from the start was
	// expanded and none of them links to the target.
	OutcomeExhausted

	// OutcomeLimitReached means the depth limit or the fetch budget stopped
	// the search before the reachable graph was exhausted.
	OutcomeLimitReached
)

// String returns the outcome name used in reports and the database.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeLimitReached:
		return "limit_reached"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome converts a stored outcome name back to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "found":
		return OutcomeFound, nil
	case "exhausted":
		return OutcomeExhausted, nil
	case "limit_reached":
		return OutcomeLimitReached, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

// Unreachable records a page that contributed no links because it could not
// be fetched.
type Unreachable struct {
	// ID is the page that failed.
	ID PageID `json:"id"`

	// Depth is the depth the page was registered at.
	Depth int `json:"depth"`

	// Reason is a short description of the failure.
	Reason string `json:"reason"`
}

// SearchResult is the definitive outcome of a search: a path when Outcome is
// OutcomeFound, diagnostics otherwise.
type SearchResult struct {
	// Outcome is the terminal state reached.
	Outcome Outcome `json:"outcome"`

	// Path is the ordered sequence from start to target, both inclusive.
	// Nil unless Outcome is OutcomeFound.
	Path []PageID `json:"path,omitempty"`

	// Depth is the deepest registered depth. For a found path it equals the
	// hop count.
	Depth int `json:"depth"`

	// PagesFetched counts network fetches issued. Cache hits are excluded.
	PagesFetched int `json:"pages_fetched"`

	// PagesProcessed counts frontier pages whose links were merged.
	PagesProcessed int `json:"pages_processed"`

	// PagesDiscovered is the registry size at the end of the search.
	PagesDiscovered int `json:"pages_discovered"`

	// CacheHits counts frontier pages served from the link cache.
	CacheHits int `json:"cache_hits"`

	// Unreachable lists pages that could not be fetched.
	Unreachable []Unreachable `json:"unreachable,omitempty"`

	// Duration is the wall time of the search.
	Duration time.Duration `json:"duration"`
}

// Found reports whether a path was found.
func (r *SearchResult) Found() bool {
	return r != nil && r.Outcome == OutcomeFound
}

// Hops returns the number of links followed by the path, or -1 when no path
// was found.
func (r *SearchResult) Hops() int {
	if !r.Found() {
		return -1
	}
	return len(r.Path) - 1
}
