package version

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Commit hash pattern: hex strings of plausible abbreviated-to-full
	// SHA length. Checked together with digitsPattern so that a plain
	// integer like "123" is not mistaken for a hash.
	hashPattern = regexp.MustCompile(`^[a-f0-9]{7,40}$`)

	// digitsPattern matches tags that are purely numeric.
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	// releasePattern matches the portion of a tag before the first hyphen:
	// a dot-separated numeric run followed by an optional alphanumeric
	// prerelease marker, e.g. "1.21.3", "3.8.0b1", "2rc1".
	releasePattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(\w*)$`)
)

// mutableAliases are registry tags that name a moving target rather than a
// release. They can never be "the latest version" in a meaningful sense.
var mutableAliases = []string{"latest", "stable", "edge", "nightly", "dev", "master", "main"}

// dateIDThreshold rejects dotless numeric tags that look like encoded dates
// or build ids (e.g. "20260202"). Deliberately also rejects legitimate bare
// integer versions >= 1000; dotted releases are never filtered.
const dateIDThreshold = 1000

// Classifier turns raw tag strings into Parsed versions, rejecting
// non-version noise (mutable aliases, commit hashes, date-encoded ids).
type Classifier struct {
	aliases map[string]struct{}
}

// NewClassifier creates a classifier with the default mutable-alias set.
func NewClassifier() *Classifier {
	return NewClassifierWithAliases(mutableAliases)
}

// NewClassifierWithAliases creates a classifier that rejects the given tag
// names (case-insensitive) as mutable aliases.
func NewClassifierWithAliases(aliases []string) *Classifier {
	set := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		set[strings.ToLower(a)] = struct{}{}
	}
	return &Classifier{aliases: set}
}

// Classify parses a raw tag into a Parsed version. The second return value
// is false when the tag does not classify as a version; that is a filtering
// outcome, not an error.
func (c *Classifier) Classify(raw string) (Parsed, bool) {
	if raw == "" {
		return Parsed{}, false
	}

	if _, ok := c.aliases[strings.ToLower(raw)]; ok {
		return Parsed{}, false
	}

	// Hash-shaped and not plausibly a plain integer version.
	lower := strings.ToLower(raw)
	if hashPattern.MatchString(lower) && !digitsPattern.MatchString(raw) {
		return Parsed{}, false
	}

	// One leading v/V is cosmetic; strip it once, never recursively.
	trimmed := raw
	if len(trimmed) > 0 && (trimmed[0] == 'v' || trimmed[0] == 'V') {
		trimmed = trimmed[1:]
	}

	// Everything after the first hyphen is the compatibility suffix,
	// verbatim, further hyphens included.
	prefix, suffix, _ := strings.Cut(trimmed, "-")

	matches := releasePattern.FindStringSubmatch(prefix)
	if matches == nil {
		return Parsed{}, false
	}

	components := strings.Split(matches[1], ".")
	release := make([]int, len(components))
	for i, comp := range components {
		n, err := strconv.Atoi(comp)
		if err != nil {
			return Parsed{}, false
		}
		release[i] = n
	}

	// Dotless large numbers are almost always date-encoded build ids.
	if len(release) == 1 && release[0] >= dateIDThreshold {
		return Parsed{}, false
	}

	return Parsed{
		Release:    release,
		Prerelease: matches[2],
		Suffix:     suffix,
		Original:   raw,
	}, true
}
