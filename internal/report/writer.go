package report

import (
	"fmt"
	"io"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// Writer defines the interface for report output.
// Implementations write search results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same
// API.
type Writer interface {
	// Write outputs one search.
	// Returns the number of bytes written and any error encountered.
	Write(job *model.SearchJob) (int, error)

	// WriteAll outputs the searches of a batch as one document.
	WriteAll(jobs []*model.SearchJob) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the search to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(job *model.SearchJob) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(job)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the batch to all configured Writers.
func (m *MultiWriter) WriteAll(jobs []*model.SearchJob) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(jobs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// articleURL returns the link to id on the job's wiki, or "" when the job
// has no base URL.
func articleURL(job *model.SearchJob, id model.PageID) string {
	if job.BaseURL == "" {
		return ""
	}
	return id.URL(job.BaseURL)
}

// outcomeText describes how a search ended.
func outcomeText(job *model.SearchJob) string {
	switch {
	case job.TimedOut:
		return "cancelled"
	case job.Result == nil && job.ErrorMessage != "":
		return "error: " + job.ErrorMessage
	case job.Result == nil:
		return "not run"
	}

	r := job.Result
	switch r.Outcome {
	case model.OutcomeFound:
		return fmt.Sprintf("found (%d hops)", r.Hops())
	case model.OutcomeExhausted:
		return "no path: every reachable page was explored"
	case model.OutcomeLimitReached:
		return "no path within the limits"
	default:
		return r.Outcome.String()
	}
}
