package matching

import (
	"log/slog"
	"strings"

	"backlogtimer/internal/logging"
)

// VariantResult holds the candidates one search term returned.
type VariantResult struct {
	Term       string
	Candidates []Candidate
}

// Choice is the winning candidate and the context it won in.
type Choice struct {
	Candidate Candidate
	Score     float64
	Term      string
}

// Select returns the highest-scoring candidate across results, visited in
// order. Ties keep the earlier candidate. ok is false when no variant
// returned any candidate.
func Select(logger *slog.Logger, results []VariantResult) (Choice, bool) {
	if logger == nil {
		logger = logging.NewNop()
	}
	best := Choice{Score: unselectedBestScore}
	found := false
	for _, result := range results {
		for idx, candidate := range result.Candidates {
			score := Score(result.Term, candidate)
			logger.Debug("scored candidate",
				logging.String("term", result.Term),
				logging.Int("result_index", idx),
				logging.String("candidate", candidate.Name),
				logging.Float64("similarity", candidate.Similarity),
				logging.Float64("score", score))
			if score > best.Score {
				best = Choice{Candidate: candidate, Score: score, Term: result.Term}
				found = true
			}
		}
	}
	return best, found
}

// IsExact reports whether the chosen name equals any search variant,
// ignoring case and surrounding whitespace.
func IsExact(choice Choice, variants []string) bool {
	name := strings.ToLower(strings.TrimSpace(choice.Candidate.Name))
	for _, v := range variants {
		if strings.ToLower(strings.TrimSpace(v)) == name {
			return true
		}
	}
	return false
}
