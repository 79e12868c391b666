// Package backlog models the games a user intends to complete and the
// enrichment results attached to them.
//
// Enrichment fields are pointers so that "unknown" stays distinct from zero
// hours. Items are identified for caching by Key (title + "|" + system), not
// by RetroAchievements ID: two catalog entries sharing a title and console
// share one cached Entry. That is accepted behavior.
package backlog
