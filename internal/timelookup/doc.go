// Package timelookup resolves a backlog title to completion-time estimates.
//
// A lookup normalizes the title, searches every variant through an
// hltb.Searcher, picks the best-scoring candidate with package matching, and
// annotates the outcome for review. Searches are rate limited and memoized
// per term for the lifetime of the Service.
package timelookup
