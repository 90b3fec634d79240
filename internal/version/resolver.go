package version

// Resolver answers "which of these raw tags is the latest release",
// optionally constrained by a hint tag whose suffix and stability class the
// answer must be compatible with. It is pure and safe for concurrent use.
type Resolver struct {
	classifier *Classifier
	comparator *Comparator
}

// NewResolver creates a resolver with the default classifier.
func NewResolver() *Resolver {
	return &Resolver{
		classifier: NewClassifier(),
		comparator: NewComparator(),
	}
}

// NewResolverWithClassifier creates a resolver using a custom classifier,
// e.g. one with an extended mutable-alias set.
func NewResolverWithClassifier(c *Classifier) *Resolver {
	return &Resolver{
		classifier: c,
		comparator: NewComparator(),
	}
}

// Resolve picks the latest tag from tags, returning the exact raw string
// from the input. An empty hint leaves the choice unconstrained; a
// non-empty hint restricts candidates to tags with the hint's exact suffix
// and, when the hint is stable, prefers stable candidates.
//
// The boolean is false when nothing qualifies: no classifiable tags, an
// unclassifiable hint, or no tag matching the hint's suffix. That is an
// expected outcome, not an error.
func (r *Resolver) Resolve(tags []string, hint string) (string, bool) {
	candidates := make([]Parsed, 0, len(tags))
	for _, tag := range tags {
		if parsed, ok := r.classifier.Classify(tag); ok {
			candidates = append(candidates, parsed)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	if hint == "" {
		// Prefer stable releases, and among those bare (unsuffixed)
		// tags, falling back when a preference would empty the set.
		candidates = narrowOrKeep(candidates, Parsed.IsStable)
		candidates = narrowOrKeep(candidates, func(p Parsed) bool { return p.Suffix == "" })
	} else {
		parsedHint, ok := r.classifier.Classify(hint)
		if !ok {
			// An uninterpretable hint yields no answer even when
			// valid tags exist.
			return "", false
		}

		// Suffixes encode build variants (base image, runtime); a
		// numerically later tag with a different suffix is a wrong
		// answer, not an upgrade. Exact match, no fallback.
		matching := candidates[:0]
		for _, cand := range candidates {
			if cand.Suffix == parsedHint.Suffix {
				matching = append(matching, cand)
			}
		}
		if len(matching) == 0 {
			return "", false
		}
		candidates = matching

		// A stable hint prefers stable answers; a prerelease hint
		// keeps every suffix-matching candidate eligible.
		if parsedHint.IsStable() {
			candidates = narrowOrKeep(candidates, Parsed.IsStable)
		}
	}

	best, ok := r.comparator.Max(candidates)
	if !ok {
		return "", false
	}
	return best.Original, true
}

// narrowOrKeep filters candidates by keep, unless the narrowed set would be
// empty, in which case the original set is returned unchanged. Preference
// stages compose by chaining narrowOrKeep calls.
func narrowOrKeep(candidates []Parsed, keep func(Parsed) bool) []Parsed {
	narrowed := make([]Parsed, 0, len(candidates))
	for _, cand := range candidates {
		if keep(cand) {
			narrowed = append(narrowed, cand)
		}
	}
	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}
