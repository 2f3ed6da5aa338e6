package report

import (
	"encoding/json"
	"io"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json because the report types
// already carry json tags and page identifiers marshal as plain titles.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one search as a JSON object.
func (w *JSONWriter) Write(job *model.SearchJob) (int, error) {
	return w.writeJSON(job)
}

// WriteAll outputs the searches of a batch as a JSON array.
func (w *JSONWriter) WriteAll(jobs []*model.SearchJob) (int, error) {
	return w.writeJSON(jobs)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps searches with metadata.
//
// Design decision: We wrap the jobs rather than adding fields to
// SearchJob so output-specific fields stay out of the core data structure.
type JSONReport struct {
	// Version is the wikicrawler version that generated this report.
	Version string `json:"version"`

	// Searches are the reported searches.
	Searches []*model.SearchJob `json:"searches"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(version string, jobs ...*model.SearchJob) *JSONReport {
	return &JSONReport{
		Version:  version,
		Searches: jobs,
	}
}

// FullJSONWriter outputs reports with the metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the wikicrawler version string.
	version string
}

// NewFullJSONWriter creates a writer for reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs one search wrapped with metadata.
func (w *FullJSONWriter) Write(job *model.SearchJob) (int, error) {
	return w.writeJSON(NewJSONReport(w.version, job))
}

// WriteAll outputs a batch wrapped with metadata.
func (w *FullJSONWriter) WriteAll(jobs []*model.SearchJob) (int, error) {
	return w.writeJSON(NewJSONReport(w.version, jobs...))
}
