package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shivaghose/guardscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and no ANSI escapes, so it pipes cleanly to files and
// other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
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

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeUnprotected(&sb, report)
	w.writeMalformed(&sb, report)
	w.writeCollisions(&sb, report)
	w.writeSkipped(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         GUARDSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Root:      %s\n", report.Root))
	sb.WriteString(fmt.Sprintf("Scan Date: %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")
}

// writeSummary writes the corpus-level counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Headers found:       %d\n", report.HeadersFound))
	sb.WriteString(fmt.Sprintf("  Headers processed:   %d\n", report.HeadersProcessed))
	sb.WriteString(fmt.Sprintf("  Pragma once:         %d\n", report.PragmaOnceCount))
	sb.WriteString(fmt.Sprintf("  Ifndef guards:       %d\n", report.GuardedCount))
	sb.WriteString(fmt.Sprintf("  Unprotected:         %d\n", len(report.Unprotected)))
	sb.WriteString(fmt.Sprintf("  Unique guard tags:   %d\n", report.UniqueTags))
	sb.WriteString(fmt.Sprintf("  Reused guard tags:   %d\n", report.ReusedTags))
	sb.WriteString("\n")
}

// writeUnprotected lists headers with no protection mechanism.
func (w *SimpleWriter) writeUnprotected(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Unprotected) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("UNPROTECTED HEADERS (%d)\n", len(report.Unprotected)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Unprotected) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, path := range report.Unprotected {
		sb.WriteString(fmt.Sprintf("  %s\n", path))
	}
	sb.WriteString("\n")
}

// writeMalformed lists guards whose identifiers are missing or mismatched.
func (w *SimpleWriter) writeMalformed(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Malformed) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("MALFORMED GUARDS (%d)\n", len(report.Malformed)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Malformed) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, m := range report.Malformed {
		if m.DefineName == "" {
			sb.WriteString(fmt.Sprintf("  %s: #ifndef %s has no matching #define identifier\n",
				m.Path, m.IfndefName))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s: #ifndef %s but #define %s\n",
			m.Path, m.IfndefName, m.DefineName))
	}
	sb.WriteString("\n")
}

// writeCollisions lists each reused tag with the files sharing it.
func (w *SimpleWriter) writeCollisions(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Collisions) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("REUSED GUARD TAGS (%d)\n", len(report.Collisions)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Collisions) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, c := range report.Collisions {
		sb.WriteString(fmt.Sprintf("  %s (%d files)\n", c.Tag, len(c.Paths)))
		for _, path := range c.Paths {
			sb.WriteString(fmt.Sprintf("    %s\n", path))
		}
	}
	sb.WriteString("\n")
}

// writeSkipped lists headers that could not be read.
func (w *SimpleWriter) writeSkipped(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Skipped) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("SKIPPED FILES (%d)\n", len(report.Skipped)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, s := range report.Skipped {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", s.Path, s.Reason))
	}
	sb.WriteString("\n")
}

// writeFooter writes the overall verdict.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if report.HasIssues() {
		sb.WriteString(fmt.Sprintf("RESULT: %d issue(s) found\n", report.TotalIssues()))
	} else {
		sb.WriteString("RESULT: all headers protected, no guard tag reuse\n")
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
