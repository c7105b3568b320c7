// Package report renders scan results in multiple output formats:
// human-readable text for terminals, JSON for machine consumption, and
// Markdown for documentation and sharing.
package report
