// Package table persists the enriched backlog as a SQLite snapshot.
//
// Every Save replaces the whole snapshot inside one transaction, so readers
// never observe a half-written table. Rows keep backlog order through their
// position column. Export writes the snapshot as CSV, JSON, or YAML.
//
// Schema changes bump schemaVersion; an older snapshot is rejected with
// ErrSchemaMismatch and the user rescans to rebuild it.
package table
