package crawler

import (
	"sync/atomic"
	"time"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// observerBuffer is how many progress events may wait for a slow observer
// before new events are dropped.
const observerBuffer = 256

// observerDrainTimeout is how long a finished search waits for its observer
// to take the queued events. Events still queued after that are dropped.
const observerDrainTimeout = time.Second

// EventKind identifies a progress notification.
type EventKind int

const (
	// EventPageProcessed is sent after the links of one frontier page were
	// merged.
	EventPageProcessed EventKind = iota

	// EventLayerCompleted is sent after a whole layer was merged.
	EventLayerCompleted
)

// String returns a human-readable name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPageProcessed:
		return "page_processed"
	case EventLayerCompleted:
		return "layer_completed"
	default:
		return "unknown"
	}
}

// Progress is one notification sent to an Observer.
type Progress struct {
	// Kind is the event type.
	Kind EventKind

	// Page is the page just processed. Zero for layer events.
	Page model.PageID

	// PagesProcessed is the number of frontier pages merged so far.
	PagesProcessed int

	// PagesFetched is the number of network fetches issued so far.
	PagesFetched int

	// Depth is the depth of the layer being expanded.
	Depth int

	// FrontierSize is the size of the layer being expanded, or for a
	// completed layer the size of the next one.
	FrontierSize int
}

// Observer receives search progress.
// Notifications arrive on a separate goroutine and may be dropped when the
// observer falls behind. Search returns after the last notification was
// delivered, unless the observer blocks for longer than a second.
type Observer interface {
	OnProgress(Progress)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Progress)

// OnProgress implements Observer.
func (f ObserverFunc) OnProgress(p Progress) {
	f(p)
}

// asyncObserver decouples the search from its observer with a buffered
// channel drained by one goroutine.
type asyncObserver struct {
	events  chan Progress
	done    chan struct{}
	stopped atomic.Bool
	dropped atomic.Int64
}

// newAsyncObserver starts delivering to o. A nil o returns nil, and every
// method of a nil *asyncObserver is a no-op.
func newAsyncObserver(o Observer) *asyncObserver {
	if o == nil {
		return nil
	}

	a := &asyncObserver{
		events: make(chan Progress, observerBuffer),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		for p := range a.events {
			if a.stopped.Load() {
				a.dropped.Add(1)
				continue
			}
			o.OnProgress(p)
		}
	}()
	return a
}

// notify queues p without blocking.
// It must only be called from the goroutine that calls close.
func (a *asyncObserver) notify(p Progress) {
	if a == nil {
		return
	}
	select {
	case a.events <- p:
	default:
		a.dropped.Add(1)
	}
}

// close stops accepting events and waits until the queued ones were
// delivered. After observerDrainTimeout the rest are dropped and close
// returns; a call already running in the observer may still finish later.
func (a *asyncObserver) close() {
	if a == nil {
		return
	}
	close(a.events)

	timer := time.NewTimer(observerDrainTimeout)
	defer timer.Stop()
	select {
	case <-a.done:
	case <-timer.C:
		a.stopped.Store(true)
	}
}

// droppedCount returns how many events were dropped.
func (a *asyncObserver) droppedCount() int64 {
	if a == nil {
		return 0
	}
	return a.dropped.Load()
}
