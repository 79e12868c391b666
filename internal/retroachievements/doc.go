// Package retroachievements is a client for the RetroAchievements web API.
//
// It covers the three endpoints the backlog scan consumes: the paginated
// Want to Play list, per-game progression statistics (player-reported median
// completion times), and per-game metadata. An HTTP 401 surfaces as
// ErrUnauthorized so callers can stop the whole run; every other failure is
// an ordinary wrapped error.
package retroachievements
