package backlog

import "testing"

func TestKeyIgnoresID(t *testing.T) {
	a := Item{Title: "Tetris", System: "Game Boy", RAID: 1}
	b := Item{Title: "Tetris", System: "Game Boy", RAID: 2}
	if a.Key() != "Tetris|Game Boy" {
		t.Fatalf("unexpected key %q", a.Key())
	}
	if a.Key() != b.Key() {
		t.Fatal("items sharing title and system must share a cache key")
	}
}

func TestApplyOnlyCopiesPresentFields(t *testing.T) {
	item := Item{Title: "Okami", HLTBBeat: Float(30), Comment: "keep"}
	item.Apply(Entry{Complete: Float(60), RAMaster: Float(70.5), Players: Int(12)})

	if item.HLTBBeat == nil || *item.HLTBBeat != 30 {
		t.Fatalf("absent beat must not clear existing value, got %v", item.HLTBBeat)
	}
	if item.HLTBComplete == nil || *item.HLTBComplete != 60 {
		t.Fatalf("unexpected complete %v", item.HLTBComplete)
	}
	if item.RAMaster == nil || *item.RAMaster != 70.5 {
		t.Fatalf("unexpected master %v", item.RAMaster)
	}
	if item.RAPlayers == nil || *item.RAPlayers != 12 {
		t.Fatalf("unexpected players %v", item.RAPlayers)
	}
	if item.RABeat != nil {
		t.Fatalf("absent stats beat should stay nil, got %v", *item.RABeat)
	}
	if item.Comment != "keep" {
		t.Fatalf("empty comment must not overwrite, got %q", item.Comment)
	}
}

func TestApplyDoesNotAliasEntry(t *testing.T) {
	entry := Entry{Beat: Float(10)}
	var item Item
	item.Apply(entry)
	*entry.Beat = 99
	if *item.HLTBBeat != 10 {
		t.Fatal("item must own its values")
	}
}

func TestIsComplete(t *testing.T) {
	item := Item{HLTBBeat: Float(1), HLTBComplete: Float(2)}
	if item.IsComplete() {
		t.Fatal("missing mastery time should not be complete")
	}
	item.RAMaster = Float(3)
	if !item.IsComplete() {
		t.Fatal("expected complete")
	}
}

func TestHoursFromSeconds(t *testing.T) {
	if got := HoursFromSeconds(0); got != nil {
		t.Fatalf("zero seconds should be unknown, got %v", *got)
	}
	if got := HoursFromSeconds(-5); got != nil {
		t.Fatal("negative seconds should be unknown")
	}
	if got := HoursFromSeconds(5400); got == nil || *got != 1.5 {
		t.Fatalf("unexpected hours %v", got)
	}
	if got := HoursFromSeconds(3601); got == nil || *got != 1.0 {
		t.Fatalf("expected rounding to one decimal, got %v", got)
	}
}

func TestFilterSystems(t *testing.T) {
	items := []Item{
		{Title: "A", System: "SNES/Super Famicom"},
		{Title: "B", System: "Game Boy"},
		{Title: "C", System: "PlayStation"},
	}
	if got := FilterSystems(items, []string{"game boy", "PlayStation"}, nil); len(got) != 2 || got[0].Title != "B" {
		t.Fatalf("unexpected include result %+v", got)
	}
	if got := FilterSystems(items, nil, []string{"PlayStation"}); len(got) != 2 || got[1].Title != "B" {
		t.Fatalf("unexpected exclude result %+v", got)
	}
	if got := FilterSystems(items, []string{"Game Boy", "PlayStation"}, []string{"PlayStation"}); len(got) != 1 {
		t.Fatalf("exclude should win over include, got %+v", got)
	}
	if got := FilterSystems(items, nil, nil); len(got) != 3 {
		t.Fatalf("no filters should keep everything, got %d", len(got))
	}
}

func TestMergeNewKeepsExistingEnrichment(t *testing.T) {
	existing := []Item{{Title: "A", RAID: 1, HLTBBeat: Float(5)}}
	fresh := []Item{{Title: "A", RAID: 1}, {Title: "B", RAID: 2}}
	merged, added := MergeNew(existing, fresh)
	if added != 1 || len(merged) != 2 {
		t.Fatalf("expected one new row, got added=%d merged=%d", added, len(merged))
	}
	if merged[0].HLTBBeat == nil || *merged[0].HLTBBeat != 5 {
		t.Fatal("existing enrichment should be preserved")
	}
	if merged[1].Title != "B" {
		t.Fatalf("new row should be appended, got %+v", merged[1])
	}
}
