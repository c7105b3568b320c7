package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/shivaghose/guardscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation, code review comments, and
// CI job summaries.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation with tables and GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeSummary(md, report)
	w.writeUnprotected(md, report)
	w.writeMalformed(md, report)
	w.writeCollisions(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Guardscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Headers Found", strconv.Itoa(report.HeadersFound)},
			{"Headers Processed", strconv.Itoa(report.HeadersProcessed)},
		},
	})
	md.PlainText("")
}

// writeAlert writes a GitHub-flavored alert reflecting the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	switch {
	case len(report.Unprotected) > 0 || report.ReusedTags > 0:
		md.Warningf("%d issue(s) found: %d unprotected header(s), %d reused guard tag(s), %d malformed guard(s).",
			report.TotalIssues(), len(report.Unprotected), report.ReusedTags, len(report.Malformed))
	case len(report.Malformed) > 0:
		md.Importantf("%d guard(s) have mismatched or missing #define identifiers.", len(report.Malformed))
	default:
		md.Tip("All headers are protected and every guard tag is unique.")
	}
	md.PlainText("")
}

// writeSummary writes the corpus-level counts.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pragma once", strconv.Itoa(report.PragmaOnceCount)},
			{"Ifndef guards", strconv.Itoa(report.GuardedCount)},
			{"Unprotected", strconv.Itoa(len(report.Unprotected))},
			{"Unique guard tags", strconv.Itoa(report.UniqueTags)},
			{"Reused guard tags", strconv.Itoa(report.ReusedTags)},
			{"Malformed guards", strconv.Itoa(len(report.Malformed))},
			{"Skipped files", strconv.Itoa(len(report.Skipped))},
		},
	})
	md.PlainText("")
}

// writeUnprotected lists headers with no protection mechanism.
func (w *MarkdownWriter) writeUnprotected(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Unprotected) == 0 {
		return
	}

	md.H2("Unprotected Headers")
	md.PlainText("")
	items := make([]string, 0, len(report.Unprotected))
	for _, path := range report.Unprotected {
		items = append(items, "`"+path+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeMalformed lists guards with missing or mismatched identifiers.
func (w *MarkdownWriter) writeMalformed(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Malformed) == 0 {
		return
	}

	md.H2("Malformed Guards")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Malformed))
	for _, m := range report.Malformed {
		define := m.DefineName
		if define == "" {
			define = "(missing)"
		}
		rows = append(rows, []string{"`" + m.Path + "`", m.IfndefName, define})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "#ifndef", "#define"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCollisions lists each reused tag with the files sharing it.
func (w *MarkdownWriter) writeCollisions(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Collisions) == 0 {
		return
	}

	md.H2("Reused Guard Tags")
	md.PlainText("")

	rows := make([][]string, 0)
	for _, c := range report.Collisions {
		for _, path := range c.Paths {
			rows = append(rows, []string{c.Tag, "`" + path + "`"})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tag", "File"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by guardscan*")
}
