package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	unlocked := time.Date(2024, 3, 15, 9, 30, 0, 250_000_000, time.UTC)
	last := time.Date(2024, 3, 16, 18, 0, 5, 0, time.UTC)
	p := UserProgress{
		CurrentSection:      "application",
		CompletedSections:   []string{"intro", "comprehension"},
		CompletedActivities: []string{"a1", "a2", "a3"},
		TotalScore:          130,
		StreakCount:         3,
		LastActivityDate:    &last,
		Achievements: []Achievement{
			{ID: "first-steps", Title: "Primeros Pasos", Description: "Completa tu primera actividad", Icon: "🎯", Unlocked: true, UnlockedAt: &unlocked},
			{ID: "prompt-master", Title: "Maestro de Prompts", Description: "Identifica correctamente 5 prompts", Icon: "🧠"},
		},
	}

	got := Deserialize(Serialize(p))
	assert.Equal(t, p, got)
}

func TestSerializeEmpty(t *testing.T) {
	s := Serialize(UserProgress{CurrentSection: "intro"})
	assert.Equal(t, "intro", s.CurrentSection)
	assert.NotNil(t, s.CompletedSections)
	assert.Empty(t, s.CompletedSections)
	assert.NotNil(t, s.CompletedActivities)
	assert.Empty(t, s.LastActivityDate)
}

func TestSerializeTimestampFormat(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 60_000_000, time.UTC)
	s := Serialize(UserProgress{
		Achievements: []Achievement{{ID: "x", Unlocked: true, UnlockedAt: &at}},
	})
	assert.Equal(t, "2024-01-02T03:04:05.060Z", s.Achievements[0].UnlockedAt)
}

func TestSerializeDoesNotAliasInput(t *testing.T) {
	p := UserProgress{
		CurrentSection:    "intro",
		CompletedSections: []string{"intro"},
	}
	s := Serialize(p)
	s.CompletedSections[0] = "mutated"
	assert.Equal(t, "intro", p.CompletedSections[0])
}

func TestDeserializeDropsUnparseableTimestamp(t *testing.T) {
	got := Deserialize(SerializableUserProgress{
		CurrentSection:   "intro",
		LastActivityDate: "not-a-time",
		Achievements: []SerializableAchievement{
			{ID: "x", Unlocked: true, UnlockedAt: "also-not-a-time"},
		},
	})
	assert.Nil(t, got.LastActivityDate)
	require.Len(t, got.Achievements, 1)
	assert.Nil(t, got.Achievements[0].UnlockedAt)
	assert.True(t, got.Achievements[0].Unlocked)
}
