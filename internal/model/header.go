package model

// Protection represents the duplicate-inclusion protection strategy
// detected in a header file.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output when needed.
type Protection int

const (
	// ProtectionNone indicates no recognized protection mechanism.
	ProtectionNone Protection = iota

	// ProtectionPragmaOnce indicates the file starts with "#pragma once".
	ProtectionPragmaOnce

	// ProtectionIfndefGuard indicates an #ifndef/#define guard pair was found.
	ProtectionIfndefGuard
)

// String returns a human-readable representation of the protection strategy.
func (p Protection) String() string {
	switch p {
	case ProtectionNone:
		return "none"
	case ProtectionPragmaOnce:
		return "pragma once"
	case ProtectionIfndefGuard:
		return "ifndef guard"
	default:
		return "unknown"
	}
}

// GuardStatus holds the identifiers extracted from an #ifndef/#define
// guard pair. A correct guard has IfndefName == DefineName and both
// non-empty; a mismatch or an empty DefineName is a detectable error
// state, not a construction failure.
type GuardStatus struct {
	// IfndefName is the identifier following #ifndef.
	IfndefName string `json:"ifndef_name"`

	// DefineName is the identifier following the paired #define.
	// Empty when the #define carried no identifier (malformed guard).
	DefineName string `json:"define_name"`
}

// IsConsistent reports whether the guard pair is internally consistent:
// both identifiers present and equal.
func (g GuardStatus) IsConsistent() bool {
	return g.IfndefName != "" && g.IfndefName == g.DefineName
}

// HeaderStatus is the protection classification of one header file.
// One instance is created per scanned header; it is not mutated after
// creation. Exactly one of the following holds:
// Protection == ProtectionPragmaOnce, Guard != nil, or neither.
type HeaderStatus struct {
	// Path is the file path, relative to the scan root in directory mode.
	// It is the identity key for the header.
	Path string `json:"path"`

	// Protection is the detected protection strategy.
	Protection Protection `json:"protection"`

	// Guard holds the extracted guard identifiers. Present only when an
	// #ifndef/#define pattern was found and pragma once was not.
	Guard *GuardStatus `json:"guard,omitempty"`
}

// NewUnprotectedHeader creates a HeaderStatus for a file with no
// recognized protection.
func NewUnprotectedHeader(path string) HeaderStatus {
	return HeaderStatus{Path: path, Protection: ProtectionNone}
}

// NewPragmaOnceHeader creates a HeaderStatus for a file protected by
// #pragma once.
func NewPragmaOnceHeader(path string) HeaderStatus {
	return HeaderStatus{Path: path, Protection: ProtectionPragmaOnce}
}

// NewGuardedHeader creates a HeaderStatus for a file protected by an
// #ifndef/#define guard pair.
func NewGuardedHeader(path, ifndefName, defineName string) HeaderStatus {
	return HeaderStatus{
		Path:       path,
		Protection: ProtectionIfndefGuard,
		Guard:      &GuardStatus{IfndefName: ifndefName, DefineName: defineName},
	}
}
