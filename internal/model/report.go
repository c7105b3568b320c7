package model

import (
	"errors"
	"time"
)

// ErrIssuesFound is returned by commands when the scan completed but
// found unprotected headers, reused guard tags, or malformed guards.
// It drives the non-zero process exit status without being a runtime
// failure.
var ErrIssuesFound = errors.New("header protection issues found")

// MalformedGuard describes a guard whose #ifndef and #define identifiers
// disagree, or whose #define carried no identifier at all. Such a guard
// still counts as "guarded" for tag analysis (keyed by the #ifndef
// identifier) but is surfaced as its own finding category.
type MalformedGuard struct {
	// Path is the file containing the malformed guard.
	Path string `json:"path"`

	// IfndefName is the identifier following #ifndef.
	IfndefName string `json:"ifndef_name"`

	// DefineName is the identifier following #define; empty if missing.
	DefineName string `json:"define_name"`
}

// ScanReport is the result of one directory-mode run.
// It is built fresh per run, consumed by the report writers and the
// history database, and never mutated after the pipeline completes.
type ScanReport struct {
	// Root is the directory the scan started from.
	Root string `json:"root"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Headers holds the classification of every processed header, in
	// enumeration order.
	Headers []HeaderStatus `json:"headers,omitempty"`

	// HeadersFound is the number of header files the enumerator produced.
	HeadersFound int `json:"headers_found"`

	// HeadersProcessed is the number of headers that were read and
	// classified. It is less than HeadersFound when unreadable files
	// were skipped.
	HeadersProcessed int `json:"headers_processed"`

	// Skipped lists headers that could not be read, with the read error.
	Skipped []SkippedHeader `json:"skipped,omitempty"`

	// Unprotected lists headers with no recognized protection, in
	// enumeration order.
	Unprotected []string `json:"unprotected,omitempty"`

	// PragmaOnceCount is the number of headers protected by #pragma once.
	PragmaOnceCount int `json:"pragma_once_count"`

	// GuardedCount is the number of headers with an #ifndef/#define guard.
	GuardedCount int `json:"guarded_count"`

	// Malformed lists guards whose identifiers are missing or mismatched.
	Malformed []MalformedGuard `json:"malformed,omitempty"`

	// UniqueTags is the number of distinct guard tags seen.
	UniqueTags int `json:"unique_tags"`

	// ReusedTags is the number of guard tags shared by more than one file.
	ReusedTags int `json:"reused_tags"`

	// Collisions holds each reused tag with the paths sharing it, in
	// first-discovery order.
	Collisions []TagBucket `json:"collisions,omitempty"`
}

// SkippedHeader records a header that was enumerated but could not be
// read. The scan continues past these; they are reported so the count
// mismatch between found and processed is explainable.
type SkippedHeader struct {
	// Path is the file that could not be read.
	Path string `json:"path"`

	// Reason is the read error message.
	Reason string `json:"reason"`
}

// NewScanReport creates an empty report for the given root.
func NewScanReport(root string) *ScanReport {
	return &ScanReport{
		Root:        root,
		DateScanned: time.Now(),
	}
}

// HasIssues reports whether the scan found anything that should fail
// the run: an unprotected header, a reused guard tag, or a malformed
// guard.
func (r *ScanReport) HasIssues() bool {
	return len(r.Unprotected) > 0 || r.ReusedTags > 0 || len(r.Malformed) > 0
}

// TotalIssues returns the number of findings across all categories.
func (r *ScanReport) TotalIssues() int {
	return len(r.Unprotected) + r.ReusedTags + len(r.Malformed)
}
