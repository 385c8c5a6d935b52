package progress

import "time"

// Achievement is a single unlockable award.
//
// Lifecycle: the full set of achievements is defined statically by the
// catalog; an individual achievement transitions unlocked=false -> true
// exactly once, irreversibly, at runtime.
//
// Invariant: Unlocked == false implies UnlockedAt == nil. Violations in
// stored data are tolerated on load and normalized by MergeAchievements.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// Clone returns a deep copy of the achievement.
func (a Achievement) Clone() Achievement {
	c := a
	if a.UnlockedAt != nil {
		t := *a.UnlockedAt
		c.UnlockedAt = &t
	}
	return c
}

// UserProgress is the aggregate root for everything the application
// remembers about a user.
//
// CompletedSections and CompletedActivities are sets with insertion order
// kept; uniqueness is enforced by the reducer, never by this type.
//
// Achievements always contains exactly the catalog's id set regardless of
// what was persisted - MergeAchievements enforces this on every load.
type UserProgress struct {
	CurrentSection      string        `json:"currentSection"`
	CompletedSections   []string      `json:"completedSections"`
	CompletedActivities []string      `json:"completedActivities"`
	TotalScore          int           `json:"totalScore"`
	StreakCount         int           `json:"streakCount"`
	LastActivityDate    *time.Time    `json:"lastActivityDate,omitempty"`
	Achievements        []Achievement `json:"achievements"`
}

// Clone returns a deep copy of the progress. Snapshots handed to consumers
// are clones so external mutation can never reach the store's state.
func (p UserProgress) Clone() UserProgress {
	c := p
	c.CompletedSections = append([]string(nil), p.CompletedSections...)
	c.CompletedActivities = append([]string(nil), p.CompletedActivities...)
	if p.LastActivityDate != nil {
		t := *p.LastActivityDate
		c.LastActivityDate = &t
	}
	c.Achievements = make([]Achievement, len(p.Achievements))
	for i, a := range p.Achievements {
		c.Achievements[i] = a.Clone()
	}
	return c
}

// HasSection reports whether sectionID is in the completed-sections set.
func (p UserProgress) HasSection(sectionID string) bool {
	return contains(p.CompletedSections, sectionID)
}

// HasActivity reports whether activityID is in the completed-activities set.
func (p UserProgress) HasActivity(activityID string) bool {
	return contains(p.CompletedActivities, activityID)
}

// AchievementByID returns the achievement with the given id, or nil if the
// id is not in the list.
func (p UserProgress) AchievementByID(id string) *Achievement {
	for i := range p.Achievements {
		if p.Achievements[i].ID == id {
			return &p.Achievements[i]
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
