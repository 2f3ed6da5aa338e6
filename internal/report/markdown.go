package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/flowchart"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, and its mermaid package to draw the path as a flowchart that
// GitHub renders inline.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one search as a Markdown document.
func (w *MarkdownWriter) Write(job *model.SearchJob) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Wiki Crawler Report")
	md.PlainText("")
	w.writeJob(md, job, md.H2)
	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteAll outputs the searches of a batch as one Markdown document with a
// section per search.
func (w *MarkdownWriter) WriteAll(jobs []*model.SearchJob) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Wiki Crawler Report")
	md.PlainText("")

	for _, job := range jobs {
		md.H2(job.Label())
		md.PlainText("")
		w.writeJob(md, job, md.H3)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeJob writes the sections of one search. heading is the heading
// level used for the section titles.
func (w *MarkdownWriter) writeJob(md *markdown.Markdown, job *model.SearchJob, heading func(string) *markdown.Markdown) {
	w.writeSummary(md, job)
	w.writeAlert(md, job)

	if job.Result.Found() {
		heading("Path")
		md.PlainText("")
		w.writePath(md, job)
	}

	if job.Result != nil && len(job.Result.Unreachable) > 0 {
		heading("Unreachable Pages")
		md.PlainText("")
		w.writeUnreachable(md, job.Result.Unreachable)
	}
}

// writeSummary writes the property table of a search.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, job *model.SearchJob) {
	rows := [][]string{
		{"Start", w.pageCell(job, job.Start, job.StartInput)},
		{"Target", w.pageCell(job, job.Target, job.TargetInput)},
		{"Date", job.DateStarted.Format("2006-01-02 15:04:05 MST")},
		{"Outcome", outcomeText(job)},
	}

	if r := job.Result; r != nil {
		rows = append(rows,
			[]string{"Depth", strconv.Itoa(r.Depth)},
			[]string{"Pages Fetched", strconv.Itoa(r.PagesFetched)},
			[]string{"Pages Processed", strconv.Itoa(r.PagesProcessed)},
			[]string{"Pages Discovered", strconv.Itoa(r.PagesDiscovered)},
			[]string{"Cache Hits", strconv.Itoa(r.CacheHits)},
			[]string{"Duration", r.Duration.Round(time.Millisecond).String()},
		)
	}
	if job.PathID != 0 {
		rows = append(rows, []string{"History ID", strconv.FormatInt(job.PathID, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert matching the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, job *model.SearchJob) {
	switch {
	case job.TimedOut:
		md.Warning("The search was cancelled before it finished.")
	case job.Result == nil:
		md.Cautionf("The search failed: %s", job.ErrorMessage)
	case job.Result.Found():
		md.Tipf("Found a path of %d hops.", job.Result.Hops())
	case job.Result.Outcome == model.OutcomeExhausted:
		md.Note("Every page reachable from the start was explored. The target cannot be reached by following links.")
	default:
		md.Importantf("No path was found within the limits (depth %d, %d pages fetched). A larger limit may find one.",
			job.Result.Depth, job.Result.PagesFetched)
	}
	md.PlainText("")
}

// writePath writes the path as a numbered list of links and as a mermaid
// flowchart.
func (w *MarkdownWriter) writePath(md *markdown.Markdown, job *model.SearchJob) {
	items := make([]string, len(job.Result.Path))
	for i, id := range job.Result.Path {
		items[i] = w.pageCell(job, id, "")
	}
	md.OrderedList(items...)
	md.PlainText("")

	chart := flowchart.NewFlowchart(
		io.Discard,
		flowchart.WithTitle(fmt.Sprintf("%s to %s", job.Start, job.Target)),
		flowchart.WithOrientalLeftToRight(),
	)
	for i, id := range job.Result.Path {
		chart.NodeWithText(nodeName(i), mermaidText(id.String()))
	}
	for i := 1; i < len(job.Result.Path); i++ {
		chart.LinkWithArrowHead(nodeName(i-1), nodeName(i))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeUnreachable lists the pages that could not be fetched.
func (w *MarkdownWriter) writeUnreachable(md *markdown.Markdown, pages []model.Unreachable) {
	items := make([]string, len(pages))
	for i, u := range pages {
		items[i] = fmt.Sprintf("%s (depth %d): %s", markdown.Code(u.ID.String()), u.Depth, u.Reason)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [Wiki Crawler](https://github.com/Baykugan/Wiki-Crawler)*")
}

// pageCell renders id as a Markdown link when the job knows its wiki.
func (w *MarkdownWriter) pageCell(job *model.SearchJob, id model.PageID, fallback string) string {
	if id.IsZero() {
		if fallback == "" {
			return "(random)"
		}
		return fallback
	}
	if link := articleURL(job, id); link != "" {
		return markdown.Link(id.String(), link)
	}
	return id.String()
}

// nodeName returns the mermaid node name of the i-th path element.
func nodeName(i int) string {
	return "p" + strconv.Itoa(i)
}

// mermaidText escapes text for a quoted mermaid node label.
func mermaidText(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
