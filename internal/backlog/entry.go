package backlog

// Entry is the stored enrichment result for one cache key. A missing field
// means the sub-lookup ran and found nothing; a missing Entry means the
// lookups have not run.
//
// JSON keys match the progress files written by earlier releases.
type Entry struct {
	Beat             *float64 `json:"beat"`
	Complete         *float64 `json:"complete"`
	MatchedName      string   `json:"hltb_name,omitempty"`
	Similarity       float64  `json:"similarity,omitempty"`
	Error            string   `json:"error,omitempty"`
	Comment          string   `json:"comment,omitempty"`
	RABeat           *float64 `json:"ra_beat_time"`
	RAMaster         *float64 `json:"ra_master_time"`
	RABeatHardcore   *float64 `json:"ra_beat_hardcore,omitempty"`
	RAMasterHardcore *float64 `json:"ra_master_hardcore,omitempty"`
	Players          *int     `json:"distinct_players"`
}

// HasMatch reports whether the time lookup found a candidate.
func (e Entry) HasMatch() bool {
	return e.MatchedName != ""
}
