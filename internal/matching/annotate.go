package matching

import (
	"fmt"
	"strings"
)

// Comments written for outcomes without a usable candidate.
const (
	NoMatchComment = "No HLTB match found"
	NoMatchError   = "No results"
	errorPrefix    = "Error: "
)

// Quality classifies how trustworthy a stored match is.
type Quality string

const (
	QualityExact  Quality = "exact"
	QualityFuzzy  Quality = "fuzzy"
	QualityLoose  Quality = "loose"
	QualityPoor   Quality = "poor"
	QualityNone   Quality = "none"
	QualityFailed Quality = "error"
)

// Annotate returns the review comment for choice. An exact match against any
// variant needs no comment.
func Annotate(choice Choice, variants []string) string {
	name := choice.Candidate.Name
	switch {
	case IsExact(choice, variants):
		return ""
	case choice.Score >= fuzzyThreshold:
		return "Fuzzy match: " + name
	case choice.Score >= looseThreshold:
		return fmt.Sprintf("Loose match (%s): %s", percent(choice.Candidate.Similarity), name)
	default:
		return fmt.Sprintf("Poor match (%s): %s - VERIFY", percent(choice.Candidate.Similarity), name)
	}
}

// ErrorComment formats a lookup failure for the comment column.
func ErrorComment(err error) string {
	if err == nil {
		return ""
	}
	return errorPrefix + err.Error()
}

// Classify maps a stored comment back to its match quality. hasTimes reports
// whether the item carries a lookup time; an empty comment only means an
// exact match when it does.
func Classify(comment string, hasTimes bool) Quality {
	lower := strings.ToLower(strings.TrimSpace(comment))
	switch {
	case lower == "":
		if hasTimes {
			return QualityExact
		}
		return ""
	case strings.HasPrefix(lower, "fuzzy match"):
		return QualityFuzzy
	case strings.HasPrefix(lower, "loose match"):
		return QualityLoose
	case strings.HasPrefix(lower, "poor match"):
		return QualityPoor
	case strings.HasPrefix(lower, strings.ToLower(NoMatchComment)):
		return QualityNone
	case strings.HasPrefix(lower, strings.ToLower(errorPrefix)):
		return QualityFailed
	}
	return ""
}

func percent(similarity float64) string {
	return fmt.Sprintf("%.0f%%", similarity*100)
}
