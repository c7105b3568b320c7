// Package log provides slog-based logging helpers for guardscan.
// Its PathHandler rewrites absolute filesystem paths in log attributes
// to root-relative form so log output stays readable regardless of
// where a scan root lives on disk.
package log
