// Package main provides the entry point for the guardscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for guardscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardscan",
		Short: "Audit C/C++ headers for include-guard problems",
		Long: `guardscan audits C and C++ header files for include-guard problems.
It classifies each header as pragma-once, ifndef-guarded, or unprotected,
flags guards whose #ifndef and #define names disagree, and detects guard
tags reused across multiple files.

Use 'guardscan scan' to audit a directory tree, or 'guardscan check' to
verify a single header file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
