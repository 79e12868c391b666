package titles

import "strings"

// platformHints maps RetroAchievements console names to the shorter names the
// time-to-beat service files games under.
var platformHints = map[string]string{
	"Genesis/Mega Drive":   "Genesis",
	"SNES/Super Famicom":   "SNES",
	"NES/Famicom":          "NES",
	"Game Boy Advance":     "GBA",
	"Game Boy Color":       "GBC",
	"Game Boy":             "Game Boy",
	"Nintendo 64":          "N64",
	"Nintendo DS":          "DS",
	"PlayStation":          "PlayStation",
	"PlayStation 2":        "PS2",
	"PlayStation Portable": "PSP",
	"GameCube":             "GameCube",
}

// PlatformHint returns the lookup-service name for a catalog console name.
// Unknown consoles are returned unchanged.
func PlatformHint(console string) string {
	console = strings.TrimSpace(console)
	if hint, ok := platformHints[console]; ok {
		return hint
	}
	return console
}
