package guard

import (
	"fmt"

	"github.com/shivaghose/guardscan/internal/model"
)

// Check evaluates a single classified header and returns a
// human-readable finding. ok is true when the header is adequately
// protected (pragma once, or a self-consistent guard), in which case
// the finding is empty.
func Check(h model.HeaderStatus) (finding string, ok bool) {
	switch h.Protection {
	case model.ProtectionPragmaOnce:
		return "", true
	case model.ProtectionIfndefGuard:
		g := h.Guard
		if g.IsConsistent() {
			return "", true
		}
		if g.DefineName == "" {
			return fmt.Sprintf("%s: #ifndef %s is not followed by a matching #define identifier", h.Path, g.IfndefName), false
		}
		return fmt.Sprintf("%s: guard mismatch: #ifndef %s but #define %s", h.Path, g.IfndefName, g.DefineName), false
	default:
		return fmt.Sprintf("%s: no #pragma once or #ifndef/#define guard found", h.Path), false
	}
}
