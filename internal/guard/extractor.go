package guard

import (
	"fmt"
	"regexp"

	"github.com/shivaghose/guardscan/internal/model"
)

// Classification patterns. Both searches are first-match: the extractor
// never looks past the first textual occurrence, so a file with several
// #ifndef/#define pairs is classified by the earliest one alone.
var (
	// pragmaOncePattern matches "#pragma once" as the file's first line,
	// allowing leading whitespace and trailing horizontal whitespace.
	// A #pragma once appearing after any other content is intentionally
	// not recognized; the check is anchored at the start of the text.
	pragmaOncePattern = regexp.MustCompile(`\A\s*#pragma once[^\S\n]*(?:\n|\z)`)

	// ifndefPattern locates the first "#ifndef <identifier>" directly
	// followed (next line, optional indent) by a "#define".
	ifndefPattern = regexp.MustCompile(`#ifndef\s+(\w+)[^\n]*\n[ \t]*#define`)
)

// Classify determines the protection status of one header from its full
// text. Pragma-once wins over an #ifndef guard when both are present.
// Absence of protection is a valid, reportable state, never an error.
//
// The guard extraction is a two-stage search. The first stage finds the
// earliest "#ifndef <tag> ... #define" pair and captures the tag. The
// second stage searches independently for that specific tag followed by
// a "#define <identifier>"; when it fails (for example the #define has
// no identifier), DefineName is left empty, which models a malformed
// guard rather than a failure.
func Classify(path, text string) model.HeaderStatus {
	if pragmaOncePattern.MatchString(text) {
		return model.NewPragmaOnceHeader(path)
	}

	m := ifndefPattern.FindStringSubmatch(text)
	if m == nil {
		return model.NewUnprotectedHeader(path)
	}
	ifndefName := m[1]

	defineName := ""
	paired := regexp.MustCompile(fmt.Sprintf(
		`#ifndef\s+%s\b[^\n]*\n[ \t]*#define\s+(\w+)`, regexp.QuoteMeta(ifndefName)))
	if pm := paired.FindStringSubmatch(text); pm != nil {
		defineName = pm[1]
	}

	return model.NewGuardedHeader(path, ifndefName, defineName)
}
