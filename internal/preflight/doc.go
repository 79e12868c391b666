// Package preflight provides readiness checks run before a scan starts.
//
// A scan writes checkpoints into the data directory after every batch, so an
// unwritable directory would only surface after the first batch of network
// calls. RunAll catches that, plus missing credentials, up front.
package preflight
