// Package pipeline orchestrates a directory-mode scan as a sequence of
// steps: enumerate headers under the root, classify each header's
// protection, and analyze guard tags for collisions. Steps mutate a
// shared model.ScanReport, and the pipeline stops on the first error.
package pipeline
