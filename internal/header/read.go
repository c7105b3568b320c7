package header

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadText reads a file's full contents as text. Decoding is lossy by
// design: a leading byte-order mark (UTF-8 or UTF-16) is stripped, and
// invalid byte sequences are replaced with U+FFFD instead of failing.
// The only error condition is the file read itself.
//
// Design decision: BOMs are stripped before classification so that a
// "#pragma once" behind a UTF-8 BOM is still recognized as the file's
// first line. Other undecodable bytes become replacement runes, which
// never match a directive pattern and therefore read as ordinary
// non-matching text.
func ReadText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		// The UTF-8 decoder substitutes rather than errors; any failure
		// here would come from an exotic transform state.
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	return string(decoded), nil
}
