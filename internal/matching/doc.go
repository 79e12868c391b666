// Package matching scores time-to-beat search candidates against a search
// term and picks the winner across every search variant.
//
// Score is a pure function so it can be tested without network access.
// Select walks variants in priority order and keeps the first candidate with
// the strictly highest score. Annotate turns the winning score into the
// human-review comment stored alongside the enrichment.
package matching
