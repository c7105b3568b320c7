package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shivaghose/guardscan/internal/config"
	"github.com/shivaghose/guardscan/internal/database"
	"github.com/shivaghose/guardscan/internal/header"
	gslog "github.com/shivaghose/guardscan/internal/log"
	"github.com/shivaghose/guardscan/internal/model"
	"github.com/shivaghose/guardscan/internal/pipeline"
	"github.com/shivaghose/guardscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Audit all headers under a directory tree",
		Long: `Scan walks a directory tree, classifies every header file it finds,
and reports protection problems:
- Unprotected headers (neither #pragma once nor an ifndef guard)
- Malformed guards (the #ifndef and #define names disagree)
- Guard tags reused by more than one file

The directory defaults to the current directory. The command exits with
status 1 when any problem is found, so it can gate CI jobs.

Examples:
  # Scan the current directory
  guardscan scan

  # Scan a specific source tree
  guardscan scan ~/src/mylib

  # Treat additional extensions as headers
  guardscan scan --ext .h --ext .hh include/

  # Skip generated directories
  guardscan scan --exclude build --exclude third_party src/

  # Output JSON report to a file
  guardscan scan --json -o report.json src/

  # Use a custom configuration file
  guardscan scan -c myconfig.yaml src/

Configuration file (.guardscan) example:
  defaults:
    exclude: [build, third_party]
  roots:
    src:
      extensions: [.h, .hh]
      workers: 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().StringSliceP("ext", "e", nil,
		"File extensions treated as headers (default: .h, .hpp, .hxx)")
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Directory names to skip, in addition to .git and .svn")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of headers read and classified concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .guardscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the scan report to the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(cfg.Root, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Positional argument is the scan root; defaults to the current
	// directory.
	cfg.Root = "."
	if len(args) > 0 {
		cfg.Root = args[0]
	}

	// Get flag values
	var err error

	cfg.Extensions, err = cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return nil, err
	}

	cfg.ExcludeDirs, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load root-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags win over the config file; only unset values are filled in.
	cfg.ApplyFileConfig(cfg.Root)

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Path attributes under root are rendered root-relative.
func setupLogger(root string, verbose bool) *slog.Logger {
	return gslog.NewLogger(os.Stderr, root, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return fmt.Errorf("cannot access scan root %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %s is not a directory (use 'guardscan check' for single files)", cfg.Root)
	}

	// Normalize to an absolute path so history entries for the same
	// tree match regardless of where the command was run from.
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		cfg.Root = abs
	}

	logger.Info("starting scan",
		"root", cfg.Root,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// History is best effort; a locked or unwritable database
			// must not block the audit itself.
			logger.Warn("failed to open history database, continuing without history", "error", err)
			db = nil
		} else {
			defer db.Close()
			logger.Info("database opened", "dir", cfg.DBDir)
		}
	}

	p := createPipeline(cfg, logger)

	scanReport := model.NewScanReport(cfg.Root)

	startTime := time.Now()

	// Execute the pipeline
	if err := p.Execute(ctx, scanReport); err != nil {
		return fmt.Errorf("scan of %s failed: %w", cfg.Root, err)
	}

	elapsed := time.Since(startTime)
	logger.Info("scan completed",
		"headersFound", scanReport.HeadersFound,
		"headersProcessed", scanReport.HeadersProcessed,
		"elapsed", elapsed.Round(time.Millisecond),
	)

	// Generate and output report
	if err := outputReport(cfg, scanReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Save to database if enabled
	if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
		logger.Error("failed to save scan report", "root", cfg.Root, "error", err)
	}

	if scanReport.HasIssues() {
		return fmt.Errorf("%w: %d issue(s) in %s", model.ErrIssuesFound, scanReport.TotalIssues(), cfg.Root)
	}
	return nil
}

// createPipeline creates a scan pipeline with the given configuration.
func createPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	scanOpts := []pipeline.ScanOption{
		pipeline.WithScanLogger(logger),
	}
	if len(cfg.Extensions) > 0 {
		scanOpts = append(scanOpts, pipeline.WithScanExtensions(cfg.Extensions))
	}
	if len(cfg.ExcludeDirs) > 0 {
		// User excludes extend the built-in ones rather than replace
		// them, so --exclude never resurrects the .git subtree.
		excludes := append([]string{}, header.DefaultExcludeDirs...)
		excludes = append(excludes, cfg.ExcludeDirs...)
		scanOpts = append(scanOpts, pipeline.WithScanExcludeDirs(excludes))
	}
	if cfg.Workers > 0 {
		scanOpts = append(scanOpts, pipeline.WithScanWorkers(cfg.Workers))
	}

	return pipeline.DefaultPipeline(pipelineOpts, scanOpts...)
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (machine-readable report with all data)
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "root", scanReport.Root)
	return nil
}
