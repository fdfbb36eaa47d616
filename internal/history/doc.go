// Package history is the run ledger: one SQLite row per finished sample
// run, successful or not, keyed by a UUID run ID.
//
// The schema is applied from embedded migrations on Open. Timestamps are
// stored as fixed-width UTC text.
package history
