package version

import "testing"

func mustClassify(t *testing.T, raw string) Parsed {
	t.Helper()
	parsed, ok := NewClassifier().Classify(raw)
	if !ok {
		t.Fatalf("Classify(%q) unexpectedly rejected", raw)
	}
	return parsed
}

func TestCompare(t *testing.T) {
	comparator := NewComparator()

	tests := []struct {
		name   string
		a, b   string
		expect int
	}{
		{"major difference", "2.0.0", "1.9.9", 1},
		{"minor difference", "1.3.0", "1.2.9", 1},
		{"patch difference", "1.2.3", "1.2.4", -1},
		{"equal", "1.2.3", "1.2.3", 0},
		{"short release zero-extends", "1", "1.0.0", 0},
		{"zero-extension is not less specific", "1", "1.0.1", -1},
		{"stable beats prerelease at same release", "3.8.0", "3.8.0b1", 1},
		{"prerelease below stable", "1.0.0rc1", "1.0.0", -1},
		{"prereleases compare lexically", "3.8.0b1", "3.8.0b2", -1},
		{"large calendar releases", "2026.2.2", "2025.1.15", 1},
		{"suffix never participates", "1.2.3-alpine", "1.2.3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustClassify(t, tt.a)
			b := mustClassify(t, tt.b)

			if got := comparator.Compare(a, b); got != tt.expect {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expect)
			}
			if got := comparator.Compare(b, a); got != -tt.expect {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.expect)
			}
		})
	}
}

func TestMax(t *testing.T) {
	comparator := NewComparator()

	if _, ok := comparator.Max(nil); ok {
		t.Fatal("Max of empty slice should report false")
	}

	candidates := []Parsed{
		mustClassify(t, "1.2.3"),
		mustClassify(t, "2.0.0"),
		mustClassify(t, "1.99.0"),
	}
	best, ok := comparator.Max(candidates)
	if !ok || best.Original != "2.0.0" {
		t.Errorf("Max = %q, want \"2.0.0\"", best.Original)
	}
}
