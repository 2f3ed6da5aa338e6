package model

import "time"

// PageLinks is the outcome of expanding one page, in the form the link cache
// stores it: the outgoing links of the canonical article, or a dead end.
type PageLinks struct {
	// ID is the title that was requested.
	ID PageID `json:"id"`

	// Canonical is the article ID resolved to. Equal to ID unless ID is a
	// redirect.
	Canonical PageID `json:"canonical"`

	// Links are the outgoing article links in first-seen order.
	Links []PageID `json:"links,omitempty"`

	// Hash is the content hash of the article the links came from.
	Hash string `json:"hash,omitempty"`

	// DeadEnd is true when the title does not exist.
	DeadEnd bool `json:"dead_end,omitempty"`

	// Reason describes why the page is a dead end.
	Reason string `json:"reason,omitempty"`

	// FetchedAt is when the article was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}
