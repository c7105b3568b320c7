package pipeline

import (
	"log/slog"
)

// scanConfig holds the per-scan settings for the default pipeline.
type scanConfig struct {
	extensions  []string
	excludeDirs []string
	workers     int
	logger      *slog.Logger
}

// ScanOption configures the default pipeline's steps.
type ScanOption func(*scanConfig)

// WithScanExtensions sets the recognized header extensions.
func WithScanExtensions(extensions []string) ScanOption {
	return func(c *scanConfig) {
		c.extensions = extensions
	}
}

// WithScanExcludeDirs sets the directory names to skip during
// enumeration.
func WithScanExcludeDirs(dirs []string) ScanOption {
	return func(c *scanConfig) {
		c.excludeDirs = dirs
	}
}

// WithScanWorkers bounds the classification parallelism.
func WithScanWorkers(n int) ScanOption {
	return func(c *scanConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithScanLogger sets the logger threaded into each step.
func WithScanLogger(logger *slog.Logger) ScanOption {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

// DefaultPipeline assembles the standard directory-mode pipeline:
// enumerate, classify, analyze.
func DefaultPipeline(pipelineOpts []Option, scanOpts ...ScanOption) *Pipeline {
	cfg := &scanConfig{}
	for _, opt := range scanOpts {
		opt(cfg)
	}

	p := New(pipelineOpts...)
	p.AddSteps(
		&EnumerateStep{
			Extensions:  cfg.extensions,
			ExcludeDirs: cfg.excludeDirs,
			Logger:      cfg.logger,
		},
		&ClassifyStep{
			Workers: cfg.workers,
			Logger:  cfg.logger,
		},
		&AnalyzeStep{},
	)
	return p
}
