package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shivaghose/guardscan/internal/config"
	"github.com/shivaghose/guardscan/internal/database"
	"github.com/shivaghose/guardscan/internal/model"
)

// writeTestTree creates a small header tree for scan tests.
func writeTestTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [directory]" {
			t.Errorf("expected use 'scan [directory]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has ext flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ext")
		if flag == nil {
			t.Fatal("expected ext flag")
		}
		if flag.Shorthand != "e" {
			t.Errorf("expected shorthand 'e', got %q", flag.Shorthand)
		}
	})

	t.Run("has exclude flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("exclude")
		if flag == nil {
			t.Fatal("expected exclude flag")
		}
		if flag.Shorthand != "x" {
			t.Errorf("expected shorthand 'x', got %q", flag.Shorthand)
		}
	})

	t.Run("has workers flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("workers")
		if flag == nil {
			t.Fatal("expected workers flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(".", true)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(".", false)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get scan subcommand
		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		result := getVerboseFlag(scanCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.Root != "." {
			t.Errorf("expected root '.', got %q", cfg.Root)
		}
		if cfg.Workers != config.DefaultWorkers {
			t.Errorf("expected workers %d, got %d", config.DefaultWorkers, cfg.Workers)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
	})

	t.Run("builds config with directory argument", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"/src/mylib"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Root != "/src/mylib" {
			t.Errorf("expected root '/src/mylib', got %q", cfg.Root)
		}
	})

	t.Run("builds config with custom extensions", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("ext", ".h,.hh")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Extensions) != 2 {
			t.Errorf("expected 2 extensions, got %v", cfg.Extensions)
		}
	})

	t.Run("builds config with custom workers", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("workers", "4")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Workers != 4 {
			t.Errorf("expected workers 4, got %d", cfg.Workers)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with no-save flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "guardscan.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  exclude: [build]
  workers: 3
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.FileConfig == nil {
			t.Fatal("expected FileConfig to be loaded")
		}
		if cfg.FileConfig.Defaults.Workers != 3 {
			t.Errorf("expected default workers 3, got %d", cfg.FileConfig.Defaults.Workers)
		}
		// File default should have filled the unset exclude dirs
		if len(cfg.ExcludeDirs) != 1 || cfg.ExcludeDirs[0] != "build" {
			t.Errorf("expected exclude dirs [build], got %v", cfg.ExcludeDirs)
		}
	})

	t.Run("flags win over config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "guardscan.yaml")

		content := []byte(`
defaults:
  exclude: [build]
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("exclude", "vendor")
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.ExcludeDirs) != 1 || cfg.ExcludeDirs[0] != "vendor" {
			t.Errorf("expected exclude dirs [vendor], got %v", cfg.ExcludeDirs)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Create an invalid config file
		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	t.Run("outputs JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("/src/proj")
		scanReport.HeadersFound = 2

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created")
		}

		// Verify JSON content
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result map[string]interface{}
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}

		if result["root"] != "/src/proj" {
			t.Errorf("expected root '/src/proj', got %v", result["root"])
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		err := outputReport(cfg, model.NewScanReport("/src/proj"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("outputs text report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.txt")

		cfg := &config.Config{
			ReportFile: outputPath,
		}

		err := outputReport(cfg, model.NewScanReport("/src/proj"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if !strings.Contains(string(content), "/src/proj") {
			t.Error("expected report to contain the scan root")
		}
	})

	t.Run("outputs markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.md")

		cfg := &config.Config{
			MarkdownReport: true,
			ReportFile:     outputPath,
		}

		err := outputReport(cfg, model.NewScanReport("/src/proj"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "# ") {
			t.Error("expected markdown heading in report")
		}
	})
}

// TestSaveScanReport tests the saveScanReport function.
func TestSaveScanReport(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	t.Run("returns nil when db is nil", func(t *testing.T) {
		t.Parallel()

		scanReport := model.NewScanReport("/src/proj")
		err := saveScanReport(ctx, nil, scanReport, logger)
		if err != nil {
			t.Errorf("expected nil error when db is nil, got %v", err)
		}
	})

	t.Run("saves report to database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		scanReport := model.NewScanReport("/src/save-test")
		scanReport.HeadersFound = 5

		err = saveScanReport(ctx, db, scanReport, logger)
		if err != nil {
			t.Fatalf("saveScanReport() error = %v", err)
		}

		// Verify report was saved
		history, err := db.ScanHistory(ctx, "/src/save-test")
		if err != nil {
			t.Fatalf("failed to get saved report: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("expected 1 saved report, got %d", len(history))
		}
		if history[0].HeadersFound != 5 {
			t.Errorf("expected HeadersFound 5, got %d", history[0].HeadersFound)
		}
	})
}

// TestRunScan tests the scan execution end to end on temp trees.
func TestRunScan(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("returns error for nonexistent root", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Root = filepath.Join(t.TempDir(), "missing")
		cfg.SaveToDB = false

		err := runScan(context.Background(), cfg, logger)
		if err == nil {
			t.Error("expected error for nonexistent root")
		}
	})

	t.Run("returns error when root is a file", func(t *testing.T) {
		t.Parallel()

		root := writeTestTree(t, map[string]string{"a.h": "#pragma once\n"})
		cfg := config.NewConfig()
		cfg.Root = filepath.Join(root, "a.h")
		cfg.SaveToDB = false

		err := runScan(context.Background(), cfg, logger)
		if err == nil {
			t.Error("expected error when root is a file")
		}
		if errors.Is(err, model.ErrIssuesFound) {
			t.Errorf("expected a usage error, got issue error: %v", err)
		}
	})

	t.Run("clean tree returns nil", func(t *testing.T) {
		t.Parallel()

		root := writeTestTree(t, map[string]string{
			"a.h":         "#pragma once\n",
			"include/b.h": "#ifndef B_H\n#define B_H\n#endif\n",
		})

		cfg := config.NewConfig()
		cfg.Root = root
		cfg.SaveToDB = false
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		err := runScan(context.Background(), cfg, logger)
		if err != nil {
			t.Errorf("runScan() error = %v, want nil", err)
		}
	})

	t.Run("unprotected header returns issue error", func(t *testing.T) {
		t.Parallel()

		root := writeTestTree(t, map[string]string{
			"a.h": "int f(void);\n",
		})

		cfg := config.NewConfig()
		cfg.Root = root
		cfg.SaveToDB = false
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		err := runScan(context.Background(), cfg, logger)
		if !errors.Is(err, model.ErrIssuesFound) {
			t.Errorf("runScan() error = %v, want ErrIssuesFound", err)
		}
	})

	t.Run("reused guard tag returns issue error", func(t *testing.T) {
		t.Parallel()

		root := writeTestTree(t, map[string]string{
			"a.h": "#ifndef COMMON_H\n#define COMMON_H\n#endif\n",
			"b.h": "#ifndef COMMON_H\n#define COMMON_H\n#endif\n",
		})

		cfg := config.NewConfig()
		cfg.Root = root
		cfg.SaveToDB = false
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		err := runScan(context.Background(), cfg, logger)
		if !errors.Is(err, model.ErrIssuesFound) {
			t.Errorf("runScan() error = %v, want ErrIssuesFound", err)
		}
	})

	t.Run("saves history when enabled", func(t *testing.T) {
		t.Parallel()

		root := writeTestTree(t, map[string]string{
			"a.h": "#pragma once\n",
		})

		cfg := config.NewConfig()
		cfg.Root = root
		cfg.SaveToDB = true
		cfg.DBDir = t.TempDir()
		cfg.ReportFile = filepath.Join(t.TempDir(), "report.txt")

		if err := runScan(context.Background(), cfg, logger); err != nil {
			t.Fatalf("runScan() error = %v", err)
		}

		db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		// runScan normalizes the root to an absolute path before saving
		absRoot, err := filepath.Abs(root)
		if err != nil {
			t.Fatalf("failed to resolve root: %v", err)
		}
		history, err := db.ScanHistory(context.Background(), absRoot)
		if err != nil {
			t.Fatalf("ScanHistory() error = %v", err)
		}
		if len(history) != 1 {
			t.Errorf("expected 1 stored scan, got %d", len(history))
		}
	})
}

// TestRunScanCmdConflictingFormats tests runScanCmd with both --json and --markdown.
func TestRunScanCmdConflictingFormats(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "--json", "--markdown", t.TempDir()})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for conflicting report formats")
	}
	if !strings.Contains(err.Error(), "conflicting report formats") {
		t.Errorf("expected 'conflicting report formats' error, got: %v", err)
	}
}
