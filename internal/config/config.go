package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultWorkers bounds the number of headers read and classified
	// concurrently. Classification is CPU-cheap; the pool mostly hides
	// file-read latency, so a small constant is enough.
	DefaultWorkers = 8

	// AppName is the application name used for XDG directory paths.
	AppName = "guardscan"
)

// Config holds all configuration options for a guardscan run.
// It is populated from CLI flags and the optional .guardscan file and
// passed through the application explicitly rather than via global
// state; in particular the scan root is always threaded as a parameter
// so the core never depends on the ambient working directory.
type Config struct {
	// Root is the directory to scan in directory mode.
	Root string

	// Extensions are the file extensions recognized as headers.
	// Empty means the defaults (.h, .hpp, .hxx).
	Extensions []string

	// ExcludeDirs are directory names whose subtrees are skipped.
	// Empty means the defaults (.git, .svn).
	ExcludeDirs []string

	// Workers is the classification parallelism. Zero means
	// DefaultWorkers.
	Workers int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .guardscan in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// FileConfig holds settings loaded from the config file.
	FileConfig *File

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the scan-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save the scan report to the
	// history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:  DefaultWorkers,
		SaveToDB: true,
		DBDir:    XDGDataDir(),
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ApplyFileConfig overlays the settings for root from the loaded config
// file onto the Config, without overriding values already set by flags.
func (c *Config) ApplyFileConfig(root string) {
	if c.FileConfig == nil {
		return
	}
	rc := c.FileConfig.GetRootConfig(root)

	if len(c.Extensions) == 0 {
		c.Extensions = rc.Extensions
	}
	if len(c.ExcludeDirs) == 0 {
		c.ExcludeDirs = rc.Exclude
	}
	if c.Workers == DefaultWorkers && rc.Workers > 0 {
		c.Workers = rc.Workers
	}
}

// XDGDataDir returns the XDG data directory for guardscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/guardscan
// On macOS: ~/Library/Application Support/guardscan
// On Windows: %LOCALAPPDATA%\guardscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
