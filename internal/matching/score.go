package matching

import (
	"regexp"
	"strings"
)

// Candidate is one search result from the time-to-beat service. Hour fields
// are zero when the service has no estimate.
type Candidate struct {
	ID                 int
	Name               string
	Similarity         float64
	MainStoryHours     float64
	MainExtraHours     float64
	CompletionistHours float64
}

const (
	exactScore          = 1000.0
	containsScore       = 500.0
	similarityWeight    = 100.0
	sequelPenalty       = 300.0
	extraWordPenalty    = 15.0
	fuzzyThreshold      = 500.0
	looseThreshold      = 200.0
	unselectedBestScore = -999.0
)

var sequelPattern = regexp.MustCompile(`(?i)\b(II|III|IV|V|VI|VII|VIII|IX|X|\d+)\b`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "&": {}, "-": {},
	"edition": {}, "remastered": {}, "hd": {}, "definitive": {},
}

// Score rates how well candidate matches term. Higher is better; an exact
// case-insensitive match scores 1000 before penalties.
func Score(term string, candidate Candidate) float64 {
	termLower := strings.ToLower(strings.TrimSpace(term))
	nameLower := strings.ToLower(strings.TrimSpace(candidate.Name))

	var score float64
	switch {
	case nameLower == termLower:
		score = exactScore
	case strings.Contains(nameLower, termLower) || strings.Contains(termLower, nameLower):
		score = containsScore + candidate.Similarity*similarityWeight
	default:
		score = candidate.Similarity * similarityWeight
	}

	// A numbered sequel is almost never right when no number was asked for.
	if sequelPattern.MatchString(candidate.Name) && !sequelPattern.MatchString(term) {
		score -= sequelPenalty
	}

	score -= float64(extraWords(termLower, nameLower)) * extraWordPenalty
	return score
}

// extraWords counts distinct candidate words absent from the term, ignoring
// stop words.
func extraWords(termLower, nameLower string) int {
	termWords := make(map[string]struct{})
	for _, w := range strings.Fields(termLower) {
		termWords[w] = struct{}{}
	}
	counted := make(map[string]struct{})
	for _, w := range strings.Fields(nameLower) {
		if _, ok := termWords[w]; ok {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		counted[w] = struct{}{}
	}
	return len(counted)
}
