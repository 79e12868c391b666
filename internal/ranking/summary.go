package ranking

import (
	"cmp"
	"slices"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/matching"
)

const (
	topSystems   = 10
	topLongest   = 5
	topEfficient = 5
)

// SystemCount is the number of games and mastery hours for one system.
type SystemCount struct {
	System      string
	Games       int
	MasterHours float64
}

// Ranked is an item paired with the value it was ranked by.
type Ranked struct {
	Item   backlog.Item
	Value  float64
	Source string
}

// Comparison averages mastery and completionist hours over games that have both.
type Comparison struct {
	Games            int
	AvgCompletionist float64
	AvgMaster        float64
	Ratio            float64
}

// Summary aggregates an enriched backlog.
type Summary struct {
	Total            int
	WithStats        int
	WithLookup       int
	TotalPoints      int
	TotalMasterHours float64
	AvgMasterHours   float64
	Systems          []SystemCount
	Longest          []Ranked
	MostEfficient    []Ranked
	Quality          map[matching.Quality]int
	Comparison       Comparison
	MissingTimes     []string
}

// Summarize computes the summary of items.
func Summarize(items []backlog.Item) Summary {
	s := Summary{
		Total:   len(items),
		Quality: make(map[matching.Quality]int),
	}

	systems := make(map[string]*SystemCount)
	var (
		order                      []string
		compareMaster, compareFull float64
	)
	for _, item := range items {
		s.TotalPoints += item.Points
		if item.RAMaster != nil {
			s.WithStats++
			s.TotalMasterHours += *item.RAMaster
		}
		if item.HLTBBeat != nil {
			s.WithLookup++
		}
		if item.HLTBBeat == nil && item.RAMaster == nil {
			s.MissingTimes = append(s.MissingTimes, item.Title)
		}
		if item.RAMaster != nil && item.HLTBComplete != nil {
			s.Comparison.Games++
			compareMaster += *item.RAMaster
			compareFull += *item.HLTBComplete
		}

		hasTimes := item.HLTBBeat != nil || item.HLTBComplete != nil
		if q := matching.Classify(item.Comment, hasTimes); q != "" {
			s.Quality[q]++
		}

		sc, ok := systems[item.System]
		if !ok {
			sc = &SystemCount{System: item.System}
			systems[item.System] = sc
			order = append(order, item.System)
		}
		sc.Games++
		if item.RAMaster != nil {
			sc.MasterHours += *item.RAMaster
		}
	}

	if s.WithStats > 0 {
		s.AvgMasterHours = s.TotalMasterHours / float64(s.WithStats)
	}
	if n := s.Comparison.Games; n > 0 {
		s.Comparison.AvgMaster = compareMaster / float64(n)
		s.Comparison.AvgCompletionist = compareFull / float64(n)
		if s.Comparison.AvgCompletionist > 0 {
			s.Comparison.Ratio = s.Comparison.AvgMaster / s.Comparison.AvgCompletionist
		}
	}

	for _, name := range order {
		s.Systems = append(s.Systems, *systems[name])
	}
	// Stable sort keeps first-seen order among systems with equal counts.
	slices.SortStableFunc(s.Systems, func(a, b SystemCount) int {
		return cmp.Compare(b.Games, a.Games)
	})
	if len(s.Systems) > topSystems {
		s.Systems = s.Systems[:topSystems]
	}

	s.Longest = Longest(items, topLongest)
	s.MostEfficient = MostEfficient(items, topEfficient)
	return s
}

// Longest returns up to n items with the largest mastery median.
func Longest(items []backlog.Item, n int) []Ranked {
	var ranked []Ranked
	for _, item := range items {
		if item.RAMaster != nil {
			ranked = append(ranked, Ranked{Item: item, Value: *item.RAMaster, Source: SourceStats})
		}
	}
	return top(ranked, n)
}

// MostEfficient returns up to n items with the highest points per hour.
func MostEfficient(items []backlog.Item, n int) []Ranked {
	var ranked []Ranked
	for _, item := range items {
		if item.PointsPerHour == nil {
			continue
		}
		_, source, _ := TimeBasis(item)
		ranked = append(ranked, Ranked{Item: item, Value: *item.PointsPerHour, Source: source})
	}
	return top(ranked, n)
}

func top(ranked []Ranked, n int) []Ranked {
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
