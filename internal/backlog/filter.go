package backlog

import "strings"

// FilterSystems keeps items whose system is in include (when non-empty) and
// not in exclude. Matching ignores case and surrounding whitespace.
func FilterSystems(items []Item, include, exclude []string) []Item {
	in := systemSet(include)
	out := systemSet(exclude)
	if len(in) == 0 && len(out) == 0 {
		return items
	}
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		system := normalizeSystem(item.System)
		if len(in) > 0 {
			if _, ok := in[system]; !ok {
				continue
			}
		}
		if _, ok := out[system]; ok {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// MergeNew appends items from fresh whose RetroAchievements ID is not already
// present in existing. Existing rows keep their enrichment. It returns the
// merged slice and the number of rows added.
func MergeNew(existing, fresh []Item) ([]Item, int) {
	known := make(map[int]struct{}, len(existing))
	for _, item := range existing {
		if item.RAID > 0 {
			known[item.RAID] = struct{}{}
		}
	}
	merged := append([]Item(nil), existing...)
	added := 0
	for _, item := range fresh {
		if _, ok := known[item.RAID]; ok && item.RAID > 0 {
			continue
		}
		known[item.RAID] = struct{}{}
		merged = append(merged, item)
		added++
	}
	return merged, added
}

// SystemCounts returns the number of items per system.
func SystemCounts(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.System]++
	}
	return counts
}

func systemSet(systems []string) map[string]struct{} {
	set := make(map[string]struct{}, len(systems))
	for _, s := range systems {
		if s = normalizeSystem(s); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func normalizeSystem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
