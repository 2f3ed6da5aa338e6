package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// Page is the raw content of one article as returned by the Page Fetcher.
// When the requested title was a redirect, ID holds the canonical article
// and Redirects holds every title passed on the way, starting with the
// requested one.
type Page struct {
	// ID is the canonical article the content belongs to.
	ID PageID `json:"id"`

	// Redirects lists the redirect titles resolved before reaching ID.
	// Empty when the requested title was already canonical.
	Redirects []PageID `json:"redirects,omitempty"`

	// Body is the raw HTML of the article.
	Body []byte `json:"-"`

	// Hash is the hex encoded SHA3-256 of Body.
	// The link cache stores it to tell whether a page changed between runs.
	Hash string `json:"hash"`

	// FetchedAt is when the content was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPage creates a Page for id with the given body and computes its hash.
func NewPage(id PageID, body []byte) *Page {
	p := &Page{
		ID:        id,
		Body:      body,
		FetchedAt: time.Now(),
	}
	p.ComputeHash()
	return p
}

// ComputeHash calculates the SHA3-256 hash of the body.
// An empty body leaves Hash empty.
func (p *Page) ComputeHash() {
	if len(p.Body) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(p.Body)
	p.Hash = hex.EncodeToString(sum[:])
}

// Requested returns the title that was asked for before any redirect.
func (p *Page) Requested() PageID {
	if len(p.Redirects) > 0 {
		return p.Redirects[0]
	}
	return p.ID
}

// WasRedirected reports whether the requested title was a redirect.
func (p *Page) WasRedirected() bool {
	return len(p.Redirects) > 0
}
