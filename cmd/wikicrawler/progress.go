package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Baykugan/Wiki-Crawler/internal/crawler"
)

// clearLine returns the cursor to the start of the line and erases it.
const clearLine = "\r\x1b[K"

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressLine renders search progress as a single rewritten line.
// It is used as the search observer, so updates arrive from another
// goroutine.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	done    bool
	written bool
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

// OnProgress implements crawler.Observer.
func (p *progressLine) OnProgress(ev crawler.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}

	switch ev.Kind {
	case crawler.EventPageProcessed:
		fmt.Fprintf(p.w, "%sdepth %d  processed %d  fetched %d  %s",
			clearLine, ev.Depth, ev.PagesProcessed, ev.PagesFetched, ev.Page)
	case crawler.EventLayerCompleted:
		fmt.Fprintf(p.w, "%sdepth %d done  processed %d  fetched %d  next layer %d",
			clearLine, ev.Depth, ev.PagesProcessed, ev.PagesFetched, ev.FrontierSize)
	}
	p.written = true
}

// Note prints msg on a line of its own above the progress line.
// Safe on a nil receiver.
func (p *progressLine) Note(msg string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	fmt.Fprintf(p.w, "%s%s\n", clearLine, msg)
	p.written = false
}

// Clear erases the line and ignores later updates. Safe on a nil receiver.
func (p *progressLine) Clear() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.written {
		fmt.Fprint(p.w, clearLine)
	}
	p.done = true
}
