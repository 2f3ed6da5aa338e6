package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// pathSeparator joins the articles of a path.
const pathSeparator = " -> "

// SimpleWriter outputs human-readable text.
// A found path is one line of titles joined by arrows; other outcomes print
// the search statistics so the user can tell why nothing was found.
//
// Design decision: Hyperlinks use the OSC 8 escape sequence, which
// terminals that do not support it print as plain text. The CLI still only
// enables them when stdout is a terminal, so piped output stays clean.
type SimpleWriter struct {
	baseWriter

	// hyperlinks wraps titles in OSC 8 terminal hyperlinks.
	hyperlinks bool

	// verbose adds statistics and unreachable pages to found paths.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithHyperlinks enables terminal hyperlinks on article titles.
func WithHyperlinks(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.hyperlinks = enabled
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one search.
func (w *SimpleWriter) Write(job *model.SearchJob) (int, error) {
	var sb strings.Builder
	w.writeJob(&sb, job)
	return w.output.Write([]byte(sb.String()))
}

// WriteAll outputs every search of a batch, separated by blank lines.
func (w *SimpleWriter) WriteAll(jobs []*model.SearchJob) (int, error) {
	var sb strings.Builder
	for i, job := range jobs {
		if i > 0 {
			sb.WriteString("\n")
		}
		if len(jobs) > 1 {
			sb.WriteString(fmt.Sprintf("[%s]\n", job.Label()))
		}
		w.writeJob(&sb, job)
	}
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeJob(sb *strings.Builder, job *model.SearchJob) {
	if job.Result.Found() {
		sb.WriteString(w.formatPath(job))
		sb.WriteString("\n")
		if w.verbose {
			w.writeStats(sb, job.Result)
		}
		return
	}

	sb.WriteString(fmt.Sprintf("No path from %s to %s: %s\n",
		w.title(job, job.Start, job.StartInput),
		w.title(job, job.Target, job.TargetInput),
		outcomeText(job),
	))
	if job.Result != nil {
		w.writeStats(sb, job.Result)
	}
}

// formatPath renders the found path of job on one line.
func (w *SimpleWriter) formatPath(job *model.SearchJob) string {
	parts := make([]string, len(job.Result.Path))
	for i, id := range job.Result.Path {
		parts[i] = w.title(job, id, "")
	}
	return strings.Join(parts, pathSeparator)
}

// title renders id, or fallback when id is unset.
func (w *SimpleWriter) title(job *model.SearchJob, id model.PageID, fallback string) string {
	if id.IsZero() {
		if fallback == "" {
			return "(random)"
		}
		return fallback
	}
	if !w.hyperlinks {
		return id.String()
	}
	if link := articleURL(job, id); link != "" {
		return hyperlink(link, id.String())
	}
	return id.String()
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, r *model.SearchResult) {
	sb.WriteString(fmt.Sprintf("  depth %d, %d pages fetched, %d processed, %d discovered, %d from cache, %s\n",
		r.Depth, r.PagesFetched, r.PagesProcessed, r.PagesDiscovered, r.CacheHits, r.Duration.Round(time.Millisecond)))

	if len(r.Unreachable) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  %d unreachable pages\n", len(r.Unreachable)))
	if !w.verbose {
		return
	}
	for _, u := range r.Unreachable {
		sb.WriteString(fmt.Sprintf("    [-] %s (depth %d): %s\n", u.ID, u.Depth, u.Reason))
	}
}

// hyperlink wraps text in an OSC 8 terminal hyperlink to url.
func hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}
