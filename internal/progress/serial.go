package progress

import "time"

// SerializableAchievement is the storage-safe mirror of Achievement:
// identical fields with UnlockedAt as a canonical timestamp string.
type SerializableAchievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	UnlockedAt  string `json:"unlockedAt,omitempty"`
}

// SerializableUserProgress is the storage-safe mirror of UserProgress.
// This is the exact shape written inside the storage envelope and the
// export document.
type SerializableUserProgress struct {
	CurrentSection      string                    `json:"currentSection"`
	CompletedSections   []string                  `json:"completedSections"`
	CompletedActivities []string                  `json:"completedActivities"`
	TotalScore          int                       `json:"totalScore"`
	StreakCount         int                       `json:"streakCount"`
	LastActivityDate    string                    `json:"lastActivityDate,omitempty"`
	Achievements        []SerializableAchievement `json:"achievements"`
}

// Serialize converts runtime progress to its storage-safe form.
// Pure: the input is not modified and no state is shared with the result.
func Serialize(p UserProgress) SerializableUserProgress {
	s := SerializableUserProgress{
		CurrentSection:      p.CurrentSection,
		CompletedSections:   append([]string{}, p.CompletedSections...),
		CompletedActivities: append([]string{}, p.CompletedActivities...),
		TotalScore:          p.TotalScore,
		StreakCount:         p.StreakCount,
		Achievements:        make([]SerializableAchievement, len(p.Achievements)),
	}
	if p.LastActivityDate != nil {
		s.LastActivityDate = FormatTime(*p.LastActivityDate)
	}
	for i, a := range p.Achievements {
		sa := SerializableAchievement{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Unlocked:    a.Unlocked,
		}
		if a.UnlockedAt != nil {
			sa.UnlockedAt = FormatTime(*a.UnlockedAt)
		}
		s.Achievements[i] = sa
	}
	return s
}

// Deserialize converts storage-safe progress back to its runtime form.
// Exact inverse of Serialize for any value that passed ValidateStored.
//
// Timestamp strings that fail the canonical parse are dropped rather than
// guessed at - Deserialize is only reached after validation, so this is a
// second line of defense, not an expected path.
func Deserialize(s SerializableUserProgress) UserProgress {
	p := UserProgress{
		CurrentSection:      s.CurrentSection,
		CompletedSections:   append([]string{}, s.CompletedSections...),
		CompletedActivities: append([]string{}, s.CompletedActivities...),
		TotalScore:          s.TotalScore,
		StreakCount:         s.StreakCount,
		Achievements:        make([]Achievement, len(s.Achievements)),
	}
	if s.LastActivityDate != "" {
		if t, ok := ParseCanonicalTime(s.LastActivityDate); ok {
			p.LastActivityDate = timePtr(t)
		}
	}
	for i, sa := range s.Achievements {
		a := Achievement{
			ID:          sa.ID,
			Title:       sa.Title,
			Description: sa.Description,
			Icon:        sa.Icon,
			Unlocked:    sa.Unlocked,
		}
		if sa.UnlockedAt != "" {
			if t, ok := ParseCanonicalTime(sa.UnlockedAt); ok {
				a.UnlockedAt = timePtr(t)
			}
		}
		p.Achievements[i] = a
	}
	return p
}

func timePtr(t time.Time) *time.Time {
	return &t
}
