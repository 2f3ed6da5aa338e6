// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the path on one line for terminal display
//   - MarkdownWriter: a shareable document with a mermaid flowchart
//   - JSONWriter and FullJSONWriter: structured output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
