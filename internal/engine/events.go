package engine

import "github.com/roach88/questlog/internal/progress"

// Event kind tags. Stable strings: the journal records them and the CLI
// prints them, so renaming one is a schema change.
const (
	KindCompleteActivity  = "complete_activity"
	KindCompleteSection   = "complete_section"
	KindUnlockAchievement = "unlock_achievement"
	KindShowConfetti      = "show_confetti"
	KindSetCurrentSection = "set_current_section"
	KindLoadProgress      = "load_progress"
	KindSetStorageError   = "set_storage_error"
)

// Event is the closed set of inputs the reducer accepts. One struct per
// transition; the unexported marker keeps the set closed to this package.
type Event interface {
	Kind() string
	isEvent()
}

// CompleteActivity records that the user finished an activity worth Points.
// Dedup-safe: applying it twice for the same ActivityID is a no-op the
// second time, so a double-click can never double-award points.
type CompleteActivity struct {
	ActivityID string `json:"activityId"`
	Points     int    `json:"points"`
}

// CompleteSection records that the user finished a whole section.
type CompleteSection struct {
	SectionID string `json:"sectionId"`
}

// UnlockAchievement unlocks a catalog achievement by id. Unknown ids and
// already-unlocked achievements are no-ops.
type UnlockAchievement struct {
	AchievementID string `json:"achievementId"`
}

// ShowConfetti sets the celebratory UI flag directly. Used both to trigger
// and to extinguish it (the extinguishing timer lives outside the reducer).
type ShowConfetti struct {
	Visible bool `json:"visible"`
}

// SetCurrentSection overwrites the current section unconditionally.
// Navigation, not progress.
type SetCurrentSection struct {
	SectionID string `json:"sectionId"`
}

// LoadProgress replaces the progress aggregate wholesale. The reducer
// re-derives every field defensively because this event may arrive from an
// import path that bypassed the storage adapter's own validation.
type LoadProgress struct {
	Progress progress.UserProgress `json:"progress"`
}

// SetStorageError sets the persist-failure message. An empty Message
// clears it.
type SetStorageError struct {
	Message string `json:"message,omitempty"`
}

func (CompleteActivity) Kind() string  { return KindCompleteActivity }
func (CompleteSection) Kind() string   { return KindCompleteSection }
func (UnlockAchievement) Kind() string { return KindUnlockAchievement }
func (ShowConfetti) Kind() string      { return KindShowConfetti }
func (SetCurrentSection) Kind() string { return KindSetCurrentSection }
func (LoadProgress) Kind() string      { return KindLoadProgress }
func (SetStorageError) Kind() string   { return KindSetStorageError }

func (CompleteActivity) isEvent()  {}
func (CompleteSection) isEvent()   {}
func (UnlockAchievement) isEvent() {}
func (ShowConfetti) isEvent()      {}
func (SetCurrentSection) isEvent() {}
func (LoadProgress) isEvent()      {}
func (SetStorageError) isEvent()   {}
