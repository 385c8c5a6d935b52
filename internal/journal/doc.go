// Package journal keeps an append-only SQLite log of dispatched progress
// events.
//
// The journal is a diagnostic record, not part of the progress ratchet: it
// is never replayed into live state, append failures are logged and
// swallowed by the caller, and deleting the journal file loses nothing but
// history. The CLI's history command is its only reader.
//
// Ordering is by seq (the engine's logical clock), never by timestamps, so
// a listing is deterministic regardless of wall-clock skew between writes.
package journal
