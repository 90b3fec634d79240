// Package version implements the tag resolution engine: classifying raw
// registry tags into structured versions, ordering them, and picking the
// latest tag compatible with an optional hint.
package version

import (
	"strconv"
	"strings"
)

// Parsed is the structured form of a tag that survived classification.
// Values are ephemeral: produced and consumed within a single resolution
// call, never persisted.
type Parsed struct {
	// Release is the dot-separated numeric run, e.g. [1, 21, 3] for "1.21.3".
	// Always has at least one component.
	Release []int

	// Prerelease is the alphanumeric tail directly following the numeric
	// run with no separator, e.g. "b1" in "3.8.0b1". Empty means stable.
	Prerelease string

	// Suffix is everything after the first '-' in the tag, e.g.
	// "alpine3.18" in "1.21.3-alpine3.18". Empty means a bare version.
	Suffix string

	// Original is the unmodified raw tag. Resolution always surfaces this
	// exact string back to the caller.
	Original string
}

// IsStable reports whether the version has no prerelease marker.
func (p Parsed) IsStable() bool {
	return p.Prerelease == ""
}

// String returns a canonical rendering of the parsed fields. Original is
// what callers should surface; String exists for logs and test output.
func (p Parsed) String() string {
	parts := make([]string, len(p.Release))
	for i, n := range p.Release {
		parts[i] = strconv.Itoa(n)
	}
	s := strings.Join(parts, ".") + p.Prerelease
	if p.Suffix != "" {
		s += "-" + p.Suffix
	}
	return s
}
