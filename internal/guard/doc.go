// Package guard implements the core analysis of guardscan: classifying
// a header's duplicate-inclusion protection from its text, validating a
// single guard's internal consistency, and aggregating guard tags
// across a corpus to find collisions.
package guard
