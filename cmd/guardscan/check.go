package main

import (
	"fmt"
	"log/slog"

	"github.com/shivaghose/guardscan/internal/guard"
	"github.com/shivaghose/guardscan/internal/header"
	"github.com/shivaghose/guardscan/internal/model"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <header-file>...",
		Short: "Verify protection of individual header files",
		Long: `Check verifies that each given header file is protected against
multiple inclusion, either by #pragma once or by a consistent ifndef
guard (matching #ifndef and #define names).

Unlike 'guardscan scan', check does not look for guard tags reused
across files; it only judges each file on its own. Files are checked
regardless of extension, so generated or unconventionally named headers
can be verified too.

The command exits with status 1 when any file is unprotected or has a
malformed guard.

Examples:
  # Check a single header
  guardscan check include/parser.h

  # Check several headers at once
  guardscan check include/*.h`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckCmd,
	}

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(".", verbose)
	slog.SetDefault(logger)

	failed := 0
	for _, path := range args {
		text, err := header.ReadText(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ERROR: %v\n", path, err)
			failed++
			continue
		}

		status := guard.Classify(path, text)
		finding, ok := guard.Check(status)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL: %s\n", finding)
			failed++
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%s)\n", path, describeProtection(status))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s) failed", model.ErrIssuesFound, failed, len(args))
	}
	return nil
}

// describeProtection renders how a header is protected for display.
func describeProtection(status model.HeaderStatus) string {
	switch status.Protection {
	case model.ProtectionPragmaOnce:
		return "#pragma once"
	case model.ProtectionIfndefGuard:
		if status.Guard != nil {
			return fmt.Sprintf("guard %s", status.Guard.IfndefName)
		}
		return "ifndef guard"
	default:
		return status.Protection.String()
	}
}
