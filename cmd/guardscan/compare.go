package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shivaghose/guardscan/internal/config"
	"github.com/shivaghose/guardscan/internal/database"
	"github.com/shivaghose/guardscan/internal/model"
	"github.com/spf13/cobra"
)

// Constants for trend direction and summary messages.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
	noIssuesText   = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [directory]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- Headers that became unprotected since the previous scan
- Headers whose protection problems were fixed
- Guard tag collisions that appeared or disappeared

The comparison requires at least two scans in the database for the
specified directory. Use 'guardscan scan' to perform scans and save
results.

Examples:
  # Compare latest two scans for a directory
  guardscan compare ~/src/mylib

  # List all scan history for a directory
  guardscan compare --list ~/src/mylib

  # Compare with a specific historical scan by ID
  guardscan compare --with-scan-id 5 ~/src/mylib

  # Output comparison in JSON format
  guardscan compare --json ~/src/mylib

  # List all scanned directories in the database
  guardscan compare --list-roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified directory")
	cmd.Flags().BoolP("list-roots", "L", false,
		"List all scanned directories in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-roots flag first (requires database but no directory)
	listRoots, err := cmd.Flags().GetBool("list-roots")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-roots)
	var root string
	if !listRoots {
		if len(args) == 0 {
			return errors.New("directory is required (use --list-roots to see available directories)")
		}

		// Scan stores absolute roots; normalize the same way.
		root, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid directory %q: %w", args[0], err)
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-roots flag
	if listRoots {
		return listScannedRoots(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, root)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, root, withScanID, jsonOutput)
}

// listScannedRoots lists all directories that have scan records in the database.
func listScannedRoots(ctx context.Context, db *database.ScanDB) error {
	roots, err := db.ListRoots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roots: %w", err)
	}

	if len(roots) == 0 {
		fmt.Println("No scanned directories found in the database.")
		fmt.Println("\nUse 'guardscan scan <directory>' to scan a source tree.")
		return nil
	}

	fmt.Printf("Scanned directories (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Printf("  • %s\n", root)
	}
	fmt.Println("\nUse 'guardscan compare --list <directory>' to see scan history for a directory.")

	return nil
}

// listScanHistory lists all scan records for a specific directory.
func listScanHistory(ctx context.Context, db *database.ScanDB, root string) error {
	metas, err := db.ScanHistoryWithMetadata(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(metas) == 0 {
		fmt.Printf("No scan history found for %s\n", root)
		fmt.Println("\nUse 'guardscan scan' to scan this directory.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", root, len(metas))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Issue Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range metas {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatIssueSummary(meta),
		)
	}

	fmt.Println("\nUse 'guardscan compare <directory>' to compare the latest two scans.")
	fmt.Println("Use 'guardscan compare --with-scan-id <id> <directory>' to compare with a specific scan.")

	return nil
}

// formatIssueSummary formats scan metadata into a compact issue summary.
func formatIssueSummary(meta database.ScanMetadata) string {
	var parts []string
	if meta.Unprotected > 0 {
		parts = append(parts, fmt.Sprintf("U:%d", meta.Unprotected))
	}
	if meta.Malformed > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", meta.Malformed))
	}
	if meta.ReusedTags > 0 {
		parts = append(parts, fmt.Sprintf("R:%d", meta.ReusedTags))
	}

	if len(parts) == 0 {
		return noIssuesText
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, root string, withScanID int64, jsonOutput bool) error {
	reports, err := db.ScanHistory(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", root)
	}

	if len(reports) < 2 && withScanID == 0 {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Latest report is always the current one
	currentReport := reports[0]

	var previousReport *model.ScanReport
	if withScanID > 0 {
		previousReport, err = db.ScanByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same root
		if previousReport.Root != root {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Root, root)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	comparison := compareReports(previousReport, currentReport)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Root is the scanned directory.
	Root string `json:"root"`

	// PreviousScan contains summary data about the previous scan.
	PreviousScan ScanSummary `json:"previous_scan"`

	// CurrentScan contains summary data about the current scan.
	CurrentScan ScanSummary `json:"current_scan"`

	// NewUnprotected lists headers unprotected now but not before.
	NewUnprotected []string `json:"new_unprotected,omitempty"`

	// FixedUnprotected lists headers unprotected before but protected now.
	FixedUnprotected []string `json:"fixed_unprotected,omitempty"`

	// NewCollisions lists guard tags reused now but not before.
	NewCollisions []model.TagBucket `json:"new_collisions,omitempty"`

	// FixedCollisions lists guard tags reused before but unique now.
	FixedCollisions []string `json:"fixed_collisions,omitempty"`

	// Trend describes the overall change in issue counts.
	Trend Trend `json:"trend"`
}

// ScanSummary contains summary data about one scan for comparison display.
type ScanSummary struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// HeadersFound is the number of header files found.
	HeadersFound int `json:"headers_found"`

	// UnprotectedCount is the number of unprotected headers.
	UnprotectedCount int `json:"unprotected_count"`

	// MalformedCount is the number of headers with malformed guards.
	MalformedCount int `json:"malformed_count"`

	// ReusedTags is the number of guard tags used by multiple files.
	ReusedTags int `json:"reused_tags"`
}

// Trend describes the change in issue counts between scans.
type Trend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// UnprotectedDelta is the change in unprotected header count.
	UnprotectedDelta int `json:"unprotected_delta"`

	// MalformedDelta is the change in malformed guard count.
	MalformedDelta int `json:"malformed_delta"`

	// ReusedTagsDelta is the change in reused tag count.
	ReusedTagsDelta int `json:"reused_tags_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Root:         current.Root,
		PreviousScan: summarize(previous),
		CurrentScan:  summarize(current),
	}

	// Diff unprotected headers by path
	previousUnprotected := make(map[string]bool, len(previous.Unprotected))
	for _, path := range previous.Unprotected {
		previousUnprotected[path] = true
	}
	currentUnprotected := make(map[string]bool, len(current.Unprotected))
	for _, path := range current.Unprotected {
		currentUnprotected[path] = true
	}

	for _, path := range current.Unprotected {
		if !previousUnprotected[path] {
			result.NewUnprotected = append(result.NewUnprotected, path)
		}
	}
	for _, path := range previous.Unprotected {
		if !currentUnprotected[path] {
			result.FixedUnprotected = append(result.FixedUnprotected, path)
		}
	}

	// Diff guard tag collisions by tag
	previousCollisions := make(map[string]bool, len(previous.Collisions))
	for _, bucket := range previous.Collisions {
		previousCollisions[bucket.Tag] = true
	}
	currentCollisions := make(map[string]bool, len(current.Collisions))
	for _, bucket := range current.Collisions {
		currentCollisions[bucket.Tag] = true
	}

	for _, bucket := range current.Collisions {
		if !previousCollisions[bucket.Tag] {
			result.NewCollisions = append(result.NewCollisions, bucket)
		}
	}
	for _, bucket := range previous.Collisions {
		if !currentCollisions[bucket.Tag] {
			result.FixedCollisions = append(result.FixedCollisions, bucket.Tag)
		}
	}

	result.Trend = calculateTrend(result.PreviousScan, result.CurrentScan)

	return result
}

// summarize extracts comparison summary data from a scan report.
func summarize(r *model.ScanReport) ScanSummary {
	return ScanSummary{
		DateScanned:      r.DateScanned,
		HeadersFound:     r.HeadersFound,
		UnprotectedCount: len(r.Unprotected),
		MalformedCount:   len(r.Malformed),
		ReusedTags:       r.ReusedTags,
	}
}

// calculateTrend calculates the change in issue counts between two scans.
func calculateTrend(previous, current ScanSummary) Trend {
	trend := Trend{
		UnprotectedDelta: current.UnprotectedCount - previous.UnprotectedCount,
		MalformedDelta:   current.MalformedCount - previous.MalformedCount,
		ReusedTagsDelta:  current.ReusedTags - previous.ReusedTags,
	}

	previousTotal := previous.UnprotectedCount + previous.MalformedCount + previous.ReusedTags
	currentTotal := current.UnprotectedCount + current.MalformedCount + current.ReusedTags

	if currentTotal < previousTotal {
		trend.Direction = trendImproved
	} else if currentTotal > previousTotal {
		trend.Direction = trendWorsened
	} else {
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Root)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nStatus: %s\n", formatTrendDirection(result.Trend.Direction))

	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s\n", "Category", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 50))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Unprotected",
		result.PreviousScan.UnprotectedCount, result.CurrentScan.UnprotectedCount,
		formatDelta(result.Trend.UnprotectedDelta))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Malformed",
		result.PreviousScan.MalformedCount, result.CurrentScan.MalformedCount,
		formatDelta(result.Trend.MalformedDelta))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Reused tags",
		result.PreviousScan.ReusedTags, result.CurrentScan.ReusedTags,
		formatDelta(result.Trend.ReusedTagsDelta))

	if len(result.NewUnprotected) > 0 {
		fmt.Printf("\nNewly Unprotected (%d):\n", len(result.NewUnprotected))
		for _, path := range result.NewUnprotected {
			fmt.Printf("  [+] %s\n", path)
		}
	}

	if len(result.FixedUnprotected) > 0 {
		fmt.Printf("\nFixed Headers (%d):\n", len(result.FixedUnprotected))
		for _, path := range result.FixedUnprotected {
			fmt.Printf("  [-] %s\n", path)
		}
	}

	if len(result.NewCollisions) > 0 {
		fmt.Printf("\nNew Guard Tag Collisions (%d):\n", len(result.NewCollisions))
		for _, bucket := range result.NewCollisions {
			fmt.Printf("  [+] %s (%d files)\n", bucket.Tag, len(bucket.Paths))
			for _, path := range bucket.Paths {
				fmt.Printf("      %s\n", path)
			}
		}
	}

	if len(result.FixedCollisions) > 0 {
		fmt.Printf("\nResolved Guard Tag Collisions (%d):\n", len(result.FixedCollisions))
		for _, tag := range result.FixedCollisions {
			fmt.Printf("  [-] %s\n", tag)
		}
	}

	return nil
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer issues)"
	case trendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
