// Package storage persists progress snapshots to a local key-value store.
//
// The adapter owns the persistence contract and nothing else: no business
// rules live here. It writes a versioned envelope under a single primary
// key and reads it back through a strict pipeline:
//
//	read -> parse -> unwrap envelope (or legacy payload) -> validate ->
//	deserialize -> merge against catalog
//
// Failure handling, in order of severity:
//
//   - Unparseable text is quarantined under a timestamped sibling key for
//     forensic recovery, then treated as a fresh install. Quarantine keys
//     are never read back automatically.
//   - Parseable but schema-invalid payloads are discarded (no quarantine -
//     the text itself is fine, it just is not a progress record).
//   - Quota-exhausted writes delete all quarantine backups and retry once.
//
// Nothing in this package panics on bad data and no error escapes Load or
// Save: Load degrades to nil (fresh install), Save degrades to false.
package storage
