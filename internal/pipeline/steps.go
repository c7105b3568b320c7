package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/shivaghose/guardscan/internal/guard"
	"github.com/shivaghose/guardscan/internal/header"
	"github.com/shivaghose/guardscan/internal/model"
)

// DefaultWorkers is the classification parallelism used when none is
// configured. Classification is independent per file, so a small pool
// hides file-read latency without reordering the final report.
const DefaultWorkers = 8

// EnumerateStep lists header files under the report root.
type EnumerateStep struct {
	// Extensions are the recognized header extensions (empty = defaults).
	Extensions []string

	// ExcludeDirs are directory names to skip (empty = defaults).
	ExcludeDirs []string

	// Logger receives enumeration warnings.
	Logger *slog.Logger
}

// Name returns the step name.
func (s *EnumerateStep) Name() string { return "enumerate" }

// Do walks the root and records the discovered header paths.
func (s *EnumerateStep) Do(_ context.Context, report *model.ScanReport) error {
	headers, err := header.Enumerate(report.Root, header.EnumerateOptions{
		Extensions:  s.Extensions,
		ExcludeDirs: s.ExcludeDirs,
		Logger:      s.Logger,
	})
	if err != nil {
		return err
	}

	report.HeadersFound = len(headers)
	report.Headers = make([]model.HeaderStatus, 0, len(headers))
	for _, path := range headers {
		// Placeholder statuses carry the enumeration order; ClassifyStep
		// fills in the protection.
		report.Headers = append(report.Headers, model.HeaderStatus{Path: path})
	}
	return nil
}

// ClassifyStep reads each enumerated header and determines its
// protection status. Reads run in parallel up to Workers goroutines;
// results are written into an index-addressed slice so the report keeps
// enumeration order regardless of completion order.
//
// Read failures follow a skip-and-warn policy: the file is logged,
// recorded in report.Skipped, and the scan continues.
type ClassifyStep struct {
	// Workers bounds the classification parallelism (0 = DefaultWorkers).
	Workers int

	// Logger receives skip warnings.
	Logger *slog.Logger
}

// Name returns the step name.
func (s *ClassifyStep) Name() string { return "classify" }

// Do classifies every header recorded by EnumerateStep.
func (s *ClassifyStep) Do(ctx context.Context, report *model.ScanReport) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	statuses := make([]*model.HeaderStatus, len(report.Headers))
	readErrs := make([]error, len(report.Headers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range report.Headers {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rel := report.Headers[i].Path
			text, err := header.ReadText(filepath.Join(report.Root, rel))
			if err != nil {
				readErrs[i] = err
				return nil
			}

			status := guard.Classify(rel, text)
			statuses[i] = &status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Fold sequentially so skipped entries keep enumeration order.
	processed := make([]model.HeaderStatus, 0, len(statuses))
	for i, status := range statuses {
		if status == nil {
			logger.Warn("skipping unreadable header",
				"path", report.Headers[i].Path,
				"error", readErrs[i],
			)
			report.Skipped = append(report.Skipped, model.SkippedHeader{
				Path:   report.Headers[i].Path,
				Reason: readErrs[i].Error(),
			})
			continue
		}
		processed = append(processed, *status)
	}

	report.Headers = processed
	report.HeadersProcessed = len(processed)
	return nil
}

// AnalyzeStep partitions the classified headers, validates guard
// consistency, and runs the duplicate-tag analysis on the guarded
// subset.
type AnalyzeStep struct{}

// Name returns the step name.
func (s *AnalyzeStep) Name() string { return "analyze" }

// Do aggregates classification results into report findings.
func (s *AnalyzeStep) Do(_ context.Context, report *model.ScanReport) error {
	var guarded []model.HeaderStatus
	for _, h := range report.Headers {
		switch h.Protection {
		case model.ProtectionPragmaOnce:
			report.PragmaOnceCount++
		case model.ProtectionIfndefGuard:
			guarded = append(guarded, h)
			if !h.Guard.IsConsistent() {
				report.Malformed = append(report.Malformed, model.MalformedGuard{
					Path:       h.Path,
					IfndefName: h.Guard.IfndefName,
					DefineName: h.Guard.DefineName,
				})
			}
		default:
			report.Unprotected = append(report.Unprotected, h.Path)
		}
	}

	report.GuardedCount = len(guarded)

	analysis, err := guard.AnalyzeTags(guarded)
	if err != nil {
		return err
	}

	report.UniqueTags = analysis.UniqueTags
	report.ReusedTags = analysis.ReusedTags
	report.Collisions = analysis.Collisions
	return nil
}
