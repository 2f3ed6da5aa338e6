package crawler

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// ErrNotRegistered is returned when reconstructing a path to a page the
// registry has never seen.
var ErrNotRegistered = errors.New("page not registered")

// PageRecord is how and when a page was first discovered.
type PageRecord struct {
	// ID is the discovered page.
	ID model.PageID `json:"id"`

	// Predecessor is the page whose links led here. Zero for the start page.
	Predecessor model.PageID `json:"predecessor"`

	// Depth is the number of hops from the start page.
	Depth int `json:"depth"`
}

// IsStart reports whether the record is the start of the search.
func (r PageRecord) IsStart() bool {
	return r.Predecessor.IsZero()
}

// Registry records every page discovered during one search.
//
// Records are created once and never changed: the first discovery of a page
// wins. Because pages are registered layer by layer, that first discovery is
// always along a shortest path. Predecessors are stored as IDs, so a path is
// a chain of map lookups.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	records  map[model.PageID]PageRecord
	order    []model.PageID
	maxDepth int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[model.PageID]PageRecord),
	}
}

// RegisterIfNew records id unless it is already known.
// It returns the record now stored for id and whether this call created it.
// An existing record is returned unchanged.
func (r *Registry) RegisterIfNew(id, predecessor model.PageID, depth int) (PageRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[id]; ok {
		return existing, false
	}

	rec := PageRecord{ID: id, Predecessor: predecessor, Depth: depth}
	r.records[id] = rec
	r.order = append(r.order, id)
	if depth > r.maxDepth {
		r.maxDepth = depth
	}
	return rec, true
}

// Contains reports whether id has been discovered.
func (r *Registry) Contains(id model.PageID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[id]
	return ok
}

// Get returns the record for id.
func (r *Registry) Get(id model.PageID) (PageRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	return rec, ok
}

// Len returns the number of discovered pages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}

// MaxDepth returns the deepest depth any page was registered at.
func (r *Registry) MaxDepth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxDepth
}

// Records returns every record in discovery order.
func (r *Registry) Records() []PageRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PageRecord, len(r.order))
	for i, id := range r.order {
		out[i] = r.records[id]
	}
	return out
}

// ReconstructPath returns the path from the start page to id, both
// inclusive, by walking predecessors back to depth 0.
func (r *Registry) ReconstructPath(id model.PageID) ([]model.PageID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}

	path := make([]model.PageID, 0, rec.Depth+1)
	path = append(path, rec.ID)
	for !rec.IsStart() {
		// Depth strictly decreases along predecessors, so a longer walk
		// means the records are corrupt.
		if len(path) > len(r.records) {
			return nil, fmt.Errorf("predecessor chain of %s does not reach the start page", id)
		}
		prev, ok := r.records[rec.Predecessor]
		if !ok {
			return nil, fmt.Errorf("%w: predecessor %s of %s", ErrNotRegistered, rec.Predecessor, rec.ID)
		}
		rec = prev
		path = append(path, rec.ID)
	}

	slices.Reverse(path)
	return path, nil
}
