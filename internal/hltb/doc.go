// Package hltb is a small client for the HowLongToBeat search endpoint.
//
// Search posts a title query and returns every candidate as a
// matching.Candidate with completion estimates converted from seconds to
// hours. The service does not expose a relevance value, so each candidate's
// similarity to the query is computed locally with Jaro-Winkler (go-edlib),
// taking the better of the game's name and alias.
package hltb
