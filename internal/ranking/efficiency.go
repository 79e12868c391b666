// Package ranking derives the points-per-hour efficiency metric and the
// aggregate views built on an enriched backlog.
package ranking

import "backlogtimer/internal/backlog"

// TimeBasis returns the hours used to rank an item: mastery median, else
// completionist estimate, else beat estimate. ok is false when none is
// positive.
func TimeBasis(item backlog.Item) (hours float64, source string, ok bool) {
	for _, candidate := range []struct {
		value  *float64
		source string
	}{
		{item.RAMaster, SourceStats},
		{item.HLTBComplete, SourceLookup},
		{item.HLTBBeat, SourceLookup},
	} {
		if candidate.value != nil && *candidate.value > 0 {
			return *candidate.value, candidate.source, true
		}
	}
	return 0, "", false
}

// Sources of a time basis.
const (
	SourceStats  = "RA"
	SourceLookup = "HLTB"
)

// PointsPerHour returns points divided by the time basis, rounded to one
// decimal. It is nil when the item has no positive time or no points.
func PointsPerHour(item backlog.Item) *float64 {
	hours, _, ok := TimeBasis(item)
	if !ok || item.Points <= 0 {
		return nil
	}
	return backlog.Float(backlog.Round1(float64(item.Points) / hours))
}

// Apply recomputes PointsPerHour on every item in place.
func Apply(items []backlog.Item) {
	for i := range items {
		items[i].PointsPerHour = PointsPerHour(items[i])
	}
}
