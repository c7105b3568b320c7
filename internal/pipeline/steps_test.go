package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shivaghose/guardscan/internal/model"
)

// writeHeaderFile creates a header file with parent directories.
func writeHeaderFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// runScan executes the default pipeline over root and returns the report.
func runScan(t *testing.T, root string) *model.ScanReport {
	t.Helper()
	report := model.NewScanReport(root)
	p := DefaultPipeline(nil, WithScanWorkers(2))
	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return report
}

func TestScanPipeline(t *testing.T) {
	t.Parallel()

	t.Run("mixed tree is fully classified", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "pragma.h", "#pragma once\nint a;\n")
		writeHeaderFile(t, root, "guarded.h", "#ifndef GUARDED_H\n#define GUARDED_H\n#endif\n")
		writeHeaderFile(t, root, "bare.h", "int c;\n")
		writeHeaderFile(t, root, "ignored.cpp", "int main() {}\n")

		report := runScan(t, root)

		if report.HeadersFound != 3 {
			t.Errorf("expected 3 headers found, got %d", report.HeadersFound)
		}
		if report.HeadersProcessed != 3 {
			t.Errorf("expected 3 headers processed, got %d", report.HeadersProcessed)
		}
		if report.PragmaOnceCount != 1 {
			t.Errorf("expected 1 pragma once header, got %d", report.PragmaOnceCount)
		}
		if report.GuardedCount != 1 {
			t.Errorf("expected 1 guarded header, got %d", report.GuardedCount)
		}
		if len(report.Unprotected) != 1 || report.Unprotected[0] != "bare.h" {
			t.Errorf("expected bare.h unprotected, got %v", report.Unprotected)
		}
		if report.UniqueTags != 1 || report.ReusedTags != 0 {
			t.Errorf("unexpected tag counts: unique=%d reused=%d", report.UniqueTags, report.ReusedTags)
		}
	})

	t.Run("duplicate tags across files are collisions", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "a.h", "#ifndef A_H\n#define A_H\n")
		writeHeaderFile(t, root, "sub/b.h", "#ifndef A_H\n#define A_H\n")

		report := runScan(t, root)

		if report.ReusedTags != 1 {
			t.Fatalf("expected 1 reused tag, got %d", report.ReusedTags)
		}
		c := report.Collisions[0]
		if c.Tag != "A_H" {
			t.Errorf("expected tag A_H, got %s", c.Tag)
		}
		want := []string{"a.h", filepath.Join("sub", "b.h")}
		if len(c.Paths) != 2 || c.Paths[0] != want[0] || c.Paths[1] != want[1] {
			t.Errorf("expected paths %v in enumeration order, got %v", want, c.Paths)
		}
		if !report.HasIssues() {
			t.Error("expected report to have issues")
		}
	})

	t.Run("one unprotected and one pragma header yields one issue", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "bad.h", "// no protection\nint x;\n")
		writeHeaderFile(t, root, "good.h", "#pragma once\n")

		report := runScan(t, root)

		if len(report.Unprotected) != 1 || report.Unprotected[0] != "bad.h" {
			t.Errorf("expected exactly bad.h unprotected, got %v", report.Unprotected)
		}
		if !report.HasIssues() {
			t.Error("expected report to have issues")
		}
	})

	t.Run("mismatched guard is surfaced as malformed", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "bad.h", "#ifndef FOO_H\n#define BAR_H\n#endif\n")

		report := runScan(t, root)

		if report.GuardedCount != 1 {
			t.Errorf("expected mismatched guard to count as guarded, got %d", report.GuardedCount)
		}
		if len(report.Malformed) != 1 {
			t.Fatalf("expected 1 malformed guard, got %v", report.Malformed)
		}
		m := report.Malformed[0]
		if m.IfndefName != "FOO_H" || m.DefineName != "BAR_H" {
			t.Errorf("unexpected malformed guard: %+v", m)
		}
		if !report.HasIssues() {
			t.Error("expected malformed guard to be an issue")
		}
	})

	t.Run("clean tree has no issues", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "a.h", "#pragma once\n")
		writeHeaderFile(t, root, "b.h", "#ifndef B_H\n#define B_H\n#endif\n")

		report := runScan(t, root)

		if report.HasIssues() {
			t.Errorf("expected no issues, got unprotected=%v reused=%d malformed=%v",
				report.Unprotected, report.ReusedTags, report.Malformed)
		}
	})

	t.Run("unreadable header is skipped with warning", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits are ignored when running as root")
		}
		t.Parallel()
		root := t.TempDir()
		writeHeaderFile(t, root, "ok.h", "#pragma once\n")
		writeHeaderFile(t, root, "locked.h", "#pragma once\n")
		if err := os.Chmod(filepath.Join(root, "locked.h"), 0000); err != nil {
			t.Fatalf("chmod: %v", err)
		}

		report := runScan(t, root)

		if report.HeadersFound != 2 {
			t.Errorf("expected 2 headers found, got %d", report.HeadersFound)
		}
		if report.HeadersProcessed != 1 {
			t.Errorf("expected 1 header processed, got %d", report.HeadersProcessed)
		}
		if len(report.Skipped) != 1 || report.Skipped[0].Path != "locked.h" {
			t.Errorf("expected locked.h to be skipped, got %v", report.Skipped)
		}
	})

	t.Run("empty tree produces empty clean report", func(t *testing.T) {
		t.Parallel()
		report := runScan(t, t.TempDir())

		if report.HeadersFound != 0 || report.HeadersProcessed != 0 {
			t.Errorf("expected empty report, got found=%d processed=%d",
				report.HeadersFound, report.HeadersProcessed)
		}
		if report.HasIssues() {
			t.Error("expected no issues for empty tree")
		}
	})
}
