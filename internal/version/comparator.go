package version

import "strings"

// releaseWidth is the fixed comparison width for release tuples. Shorter
// releases are zero-extended, so "1" and "1.0.1" compare as 1.0.0... and
// 1.0.1... rather than by component count.
const releaseWidth = 10

// Comparator defines a total order over Parsed versions. Suffix is
// deliberately excluded: compatibility filtering happens before comparison
// and must never influence it.
type Comparator struct{}

// NewComparator creates a new version comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// Compare returns -1 if a < b, 0 if equal, 1 if a > b.
// Order of precedence: zero-padded release tuple, then stability (a stable
// version outranks a prerelease at the same release), then lexical order of
// the prerelease string.
func (c *Comparator) Compare(a, b Parsed) int {
	for i := 0; i < releaseWidth; i++ {
		av, bv := releaseAt(a.Release, i), releaseAt(b.Release, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}

	if a.Prerelease != b.Prerelease {
		if a.Prerelease == "" {
			return 1
		}
		if b.Prerelease == "" {
			return -1
		}
		return strings.Compare(a.Prerelease, b.Prerelease)
	}

	return 0
}

// Max returns the greatest version in candidates. The boolean is false for
// an empty slice.
func (c *Comparator) Max(candidates []Parsed) (Parsed, bool) {
	if len(candidates) == 0 {
		return Parsed{}, false
	}
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if c.Compare(cand, best) > 0 {
			best = cand
		}
	}
	return best, true
}

func releaseAt(release []int, i int) int {
	if i < len(release) {
		return release[i]
	}
	return 0
}
