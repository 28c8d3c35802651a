// Package history keeps a local SQLite ledger of release and full-check runs.
//
// Each run stores its identifier, timing, mode, root, and failure bitmask,
// plus one row per document with the action taken and any error. The CLI
// lists recent runs and shows per-document detail from this ledger. Old runs
// are pruned to a configured count.
package history
