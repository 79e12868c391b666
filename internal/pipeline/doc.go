// Package pipeline enriches a backlog with completion times.
//
// Run partitions the backlog into rows that are already complete, rows whose
// cache key has a stored progress entry, and rows that need lookups. The last
// group is processed in fixed-size batches by a bounded worker pool. Each
// batch ends at a barrier: results are written to the progress store, the
// store is flushed, and the table snapshot is saved. That checkpoint is the
// resume point; a rerun after an interruption treats every checkpointed key
// as a cache hit and repeats at most one batch.
//
// Item failures never stop a run. They surface as comments on the row. An
// unauthorized response from the stats service, a failed checkpoint write,
// or context cancellation stop the run.
package pipeline
