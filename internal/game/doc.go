// Package game is the provider layer: it owns the single process-wide
// Store instance wiring the pure reducer to the storage adapter and the
// event journal.
//
// Lifecycle: NewStore builds the initial state (everything locked, score
// zero, IsLoading true); Start performs the one initial storage read;
// after that every progress-changing Dispatch persists the new snapshot.
// Storage failures surface as a StorageError field on the state, never as
// errors or panics - the UI decides how to present them.
//
// The store is injected into consumers rather than reached through a
// package-level global, so tests instantiate isolated instances freely.
package game
