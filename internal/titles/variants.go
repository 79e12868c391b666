package titles

import "strings"

const (
	alternateSeparator = " | "
	versionSuffix      = " Version"
)

// baseSeparators are tried in order; only the first one present is used.
var baseSeparators = []string{":", " - "}

// SearchVariants normalizes raw and returns the search terms to try, highest
// priority first:
//
//  1. each " | "-separated alternate title (or the whole title)
//  2. each of those with a trailing " Version" removed
//  3. the text before the first ":" (or, failing that, " - ")
//
// Empty and duplicate terms are dropped.
func SearchVariants(raw string) []string {
	clean := Normalize(raw)
	variants := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	parts := []string{clean}
	if strings.Contains(clean, alternateSeparator) {
		parts = strings.Split(clean, alternateSeparator)
	}
	for _, part := range parts {
		add(part)
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, versionSuffix) {
			add(strings.TrimSuffix(part, versionSuffix))
		}
	}
	for _, sep := range baseSeparators {
		if idx := strings.Index(clean, sep); idx >= 0 {
			add(clean[:idx])
			break
		}
	}
	return variants
}
