// Package engine implements the pure progress state machine.
//
// The states are implicit in the UserProgress fields - this is a
// data-transformation state machine, not a mode machine. Reducer.Apply is
// the only transition function; it is pure, side-effect free, and owns all
// business rules (points, streaks, achievement triggers, dedup).
//
// Events form a closed sum type (see events.go). Duplicate completion
// events are not errors: they are identity transitions by design, so the
// same user interaction can never double-award points.
//
// Persistence, journaling and timers live elsewhere (internal/game,
// internal/storage, internal/journal); nothing in this package performs
// I/O.
package engine
