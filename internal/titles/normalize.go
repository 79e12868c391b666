package titles

import (
	"regexp"
	"strings"
)

var (
	leadingTagPattern = regexp.MustCompile(`^~[^~]+~\s*`)
	subsetPattern     = regexp.MustCompile(`\[Subset\s*-\s*[^\]]+\]`)
	bracketPattern    = regexp.MustCompile(`\[[^\]]*\]`)
	regionPattern     = regexp.MustCompile(`(?i)\((?:USA|Europe|Japan|World|En|Fr|De|Es|It|J|U|E|En,\s*[A-Za-z,\s]+)\)`)
	versionPattern    = regexp.MustCompile(`(?i)\((?:Rev\s*[A-Z0-9]*|v\d+\.\d+|Beta|Proto|Sample|Virtual Console|PSN|XBLA)\)`)
	discPattern       = regexp.MustCompile(`(?i)\(Disc\s*\d+\)`)
)

// accentFolds is deliberately narrow: only letters seen in catalog titles
// that the time-to-beat service spells without accents.
var accentFolds = strings.NewReplacer(
	"é", "e", "É", "E",
	"ō", "o", "Ō", "O",
	"ü", "u", "Ü", "U",
)

const trailingArticle = ", The"

// maxPasses bounds the fixed-point loop. Every pass that changes the title
// makes it shorter, so real titles settle in two or three passes.
const maxPasses = 16

// Normalize strips cataloguing noise from a raw catalog title. It is pure and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	current := raw
	for range maxPasses {
		next := normalizeOnce(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func normalizeOnce(title string) string {
	clean := leadingTagPattern.ReplaceAllString(title, "")
	clean = subsetPattern.ReplaceAllString(clean, "")
	clean = bracketPattern.ReplaceAllString(clean, "")
	clean = regionPattern.ReplaceAllString(clean, "")
	clean = versionPattern.ReplaceAllString(clean, "")
	clean = discPattern.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)
	if strings.HasSuffix(clean, trailingArticle) {
		clean = "The " + strings.TrimSpace(strings.TrimSuffix(clean, trailingArticle))
	}
	clean = accentFolds.Replace(clean)
	return strings.Join(strings.Fields(clean), " ")
}
