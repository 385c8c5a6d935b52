package engine

import (
	"github.com/roach88/questlog/internal/progress"
)

// GameState is the complete in-memory state of the progress engine.
//
// Progress is the persisted aggregate; the remaining fields are transient UI
// signals and are never written to storage.
//
// IsLoading is true only between process start and completion of the
// initial storage read. StorageError is set when a persist attempt fails
// and cleared on the next successful persist.
type GameState struct {
	Progress          progress.UserProgress
	ShowConfetti      bool
	RecentAchievement *progress.Achievement
	IsLoading         bool
	StorageError      string
}

// Clone returns a deep copy of the state. Snapshots handed to consumers are
// clones so external mutation can never reach the store.
func (s GameState) Clone() GameState {
	c := s
	c.Progress = s.Progress.Clone()
	if s.RecentAchievement != nil {
		a := s.RecentAchievement.Clone()
		c.RecentAchievement = &a
	}
	return c
}

// CompletionPercentage is the share of sections completed, rounded to the
// nearest whole percent. totalSections <= 0 yields 0.
func (s GameState) CompletionPercentage(totalSections int) int {
	if totalSections <= 0 {
		return 0
	}
	return (len(s.Progress.CompletedSections)*100 + totalSections/2) / totalSections
}

// UnlockedAchievements returns the unlocked subset of the achievement list,
// in catalog order.
func (s GameState) UnlockedAchievements() []progress.Achievement {
	var out []progress.Achievement
	for _, a := range s.Progress.Achievements {
		if a.Unlocked {
			out = append(out, a.Clone())
		}
	}
	return out
}

// IsActivityCompleted reports membership in the completed-activities set.
func (s GameState) IsActivityCompleted(activityID string) bool {
	return s.Progress.HasActivity(activityID)
}

// IsSectionCompleted reports membership in the completed-sections set.
func (s GameState) IsSectionCompleted(sectionID string) bool {
	return s.Progress.HasSection(sectionID)
}
