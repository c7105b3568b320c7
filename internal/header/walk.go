package header

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// DefaultExcludeDirs are directory names whose entire subtrees are
// skipped during enumeration. Version-control metadata never contains
// headers that take part in compilation.
var DefaultExcludeDirs = []string{".git", ".svn"}

// EnumerateOptions configures Enumerate.
type EnumerateOptions struct {
	// Extensions are the recognized header extensions.
	// Empty means DefaultExtensions.
	Extensions []string

	// ExcludeDirs are directory names to skip, subtree included.
	// Empty means DefaultExcludeDirs.
	ExcludeDirs []string

	// Logger receives warnings about unreadable directories.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// Enumerate walks the tree rooted at root and returns the paths of all
// header files, relative to root, in walk order (lexical within each
// directory, so the order is deterministic for a fixed tree).
//
// Unreadable subdirectories are logged and skipped rather than aborting
// the walk; only a failure to read the root itself is an error.
func Enumerate(root string, opts EnumerateOptions) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	excluded := make(map[string]bool)
	excludeDirs := opts.ExcludeDirs
	if len(excludeDirs) == 0 {
		excludeDirs = DefaultExcludeDirs
	}
	for _, name := range excludeDirs {
		excluded[name] = true
	}

	var headers []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && excluded[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if !IsHeader(d.Name(), opts.Extensions) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			// Rel only fails when path is not under root, which WalkDir
			// never produces.
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}
		headers = append(headers, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate headers under %s: %w", root, err)
	}

	return headers, nil
}
