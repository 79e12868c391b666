package backlog

import "math"

// Item is one backlog row.
type Item struct {
	Title         string   `json:"title" yaml:"title"`
	System        string   `json:"system" yaml:"system"`
	Achievements  int      `json:"achievements" yaml:"achievements"`
	Points        int      `json:"points" yaml:"points"`
	RAID          int      `json:"ra_id" yaml:"ra_id"`
	HLTBBeat      *float64 `json:"hltb_beat,omitempty" yaml:"hltb_beat,omitempty"`
	HLTBComplete  *float64 `json:"hltb_complete,omitempty" yaml:"hltb_complete,omitempty"`
	RABeat        *float64 `json:"ra_beat,omitempty" yaml:"ra_beat,omitempty"`
	RAMaster      *float64 `json:"ra_master,omitempty" yaml:"ra_master,omitempty"`
	RAPlayers     *int     `json:"ra_players,omitempty" yaml:"ra_players,omitempty"`
	PointsPerHour *float64 `json:"points_per_hour,omitempty" yaml:"points_per_hour,omitempty"`
	Comment       string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Key returns the cache key shared by every item with this title and system.
func Key(title, system string) string {
	return title + "|" + system
}

// Key returns the item's cache key.
func (i Item) Key() string {
	return Key(i.Title, i.System)
}

// IsComplete reports whether the beat, completionist, and mastery times are
// all known, in which case the item needs no lookups.
func (i Item) IsComplete() bool {
	return i.HLTBBeat != nil && i.HLTBComplete != nil && i.RAMaster != nil
}

// Apply copies every present field of e onto the item. Absent fields leave
// existing values untouched.
func (i *Item) Apply(e Entry) {
	if e.Beat != nil {
		i.HLTBBeat = Float(*e.Beat)
	}
	if e.Complete != nil {
		i.HLTBComplete = Float(*e.Complete)
	}
	if e.RABeat != nil {
		i.RABeat = Float(*e.RABeat)
	}
	if e.RAMaster != nil {
		i.RAMaster = Float(*e.RAMaster)
	}
	if e.Players != nil {
		i.RAPlayers = Int(*e.Players)
	}
	if e.Comment != "" {
		i.Comment = e.Comment
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HoursFromSeconds converts a positive duration in seconds to hours rounded to
// one decimal. Non-positive input yields nil.
func HoursFromSeconds(seconds float64) *float64 {
	if seconds <= 0 {
		return nil
	}
	return Float(Round1(seconds / 3600))
}
