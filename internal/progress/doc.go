// Package progress defines the user-progress data model and the pure
// functions that guard its persistence boundary.
//
// Three concerns live here:
//
//   - Validation: ValidateStored structurally checks untrusted data (storage
//     reads, imports) before it is allowed into runtime state. Data that
//     fails validation is discarded whole - never partially accepted.
//
//   - Serialization: Serialize/Deserialize convert between the runtime
//     representation (time.Time values) and the storage-safe representation
//     (canonical ISO-8601 strings). They are exact inverses for any value
//     that passed validation.
//
//   - Reconciliation: MergeAchievements reconciles the static achievement
//     catalog with persisted unlock state so that catalog changes across
//     versions never crash a load and never fabricate unlocks.
//
// INVARIANTS:
//   - Unlock state only flows forward (locked -> unlocked), never backward.
//   - A merged achievement list contains exactly the catalog's id set,
//     in catalog order - no more, no fewer.
//   - Timestamps are canonical: a stored timestamp string must round-trip
//     through parsing byte-identically or the record is rejected.
package progress
