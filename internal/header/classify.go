package header

import (
	"strings"
)

// DefaultExtensions are the file extensions recognized as C/C++ headers.
var DefaultExtensions = []string{".h", ".hpp", ".hxx"}

// IsHeader reports whether the file name denotes a header by checking
// every dot-separated suffix (case-insensitized) against the recognized
// extensions. A multi-suffix name like "config.h.in" counts because
// ".h" appears in its suffix chain.
//
// If extensions is empty, DefaultExtensions is used.
func IsHeader(name string, extensions []string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	recognized := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		recognized[strings.ToLower(ext)] = true
	}

	for _, suffix := range Suffixes(name) {
		if recognized[strings.ToLower(suffix)] {
			return true
		}
	}
	return false
}

// Suffixes returns the dot-separated suffixes of a file name, each with
// its leading dot (e.g. "archive.tar.gz" yields [".tar", ".gz"]).
// Leading dots are not suffix separators, so dotfiles like ".vimrc" and
// bare extensions like ".h" have no suffixes, and a name ending in a
// dot has none either.
func Suffixes(name string) []string {
	if name == "" || strings.HasSuffix(name, ".") {
		return nil
	}
	name = strings.TrimLeft(name, ".")

	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return nil
	}

	suffixes := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		suffixes = append(suffixes, "."+part)
	}
	return suffixes
}
