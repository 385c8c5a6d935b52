package progress

// MergeAchievements reconciles the static catalog with persisted unlock
// state.
//
// The result is seeded entirely from catalog - catalog order is preserved
// and achievements added since the stored snapshot was written appear
// locked. A stored entry contributes only when its id still exists in the
// catalog AND it is unlocked; then the unlock state and timestamp overwrite
// the catalog entry. Achievements removed from the catalog are silently
// dropped.
//
// Unlock state only ever flows forward: a stored locked entry can never
// re-lock a catalog entry, and nothing here fabricates an unlock.
//
// The unlock invariant is normalized on the way through: a locked result
// never carries a timestamp.
func MergeAchievements(catalog, stored []Achievement) []Achievement {
	merged := make([]Achievement, len(catalog))
	index := make(map[string]int, len(catalog))
	for i, a := range catalog {
		c := a.Clone()
		if !c.Unlocked {
			c.UnlockedAt = nil
		}
		merged[i] = c
		index[c.ID] = i
	}

	for _, s := range stored {
		i, known := index[s.ID]
		if !known || !s.Unlocked {
			continue
		}
		merged[i].Unlocked = true
		if s.UnlockedAt != nil {
			t := *s.UnlockedAt
			merged[i].UnlockedAt = &t
		}
	}

	return merged
}
