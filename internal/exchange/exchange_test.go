package exchange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/questlog/internal/progress"
)

var exportNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func exchangeCatalog() []progress.Achievement {
	return []progress.Achievement{
		{ID: "first-steps", Title: "Primeros Pasos", Icon: "🎯"},
		{ID: "completionist", Title: "Completista", Icon: "🏆"},
	}
}

func sampleProgress() progress.UserProgress {
	at := exportNow.Add(-time.Hour)
	return progress.UserProgress{
		CurrentSection:      "intro",
		CompletedSections:   []string{},
		CompletedActivities: []string{"a1"},
		TotalScore:          25,
		StreakCount:         1,
		LastActivityDate:    &at,
		Achievements: []progress.Achievement{
			{ID: "first-steps", Title: "Primeros Pasos", Icon: "🎯", Unlocked: true, UnlockedAt: &at},
			{ID: "completionist", Title: "Completista", Icon: "🏆"},
		},
	}
}

func TestExportDocumentShape(t *testing.T) {
	out, err := Export(sampleProgress(), exportNow)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), out[len(out)-1])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, float64(ExportVersion), doc["version"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", doc["exportedAt"])

	payload, ok := doc["progress"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "intro", payload["currentSection"])
	assert.Equal(t, float64(25), payload["totalScore"])
}

func TestExportImportRoundTrip(t *testing.T) {
	p := sampleProgress()
	out, err := Export(p, exportNow)
	require.NoError(t, err)

	got, err := Import(out, exchangeCatalog())
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestImportReconcilesAgainstCatalog(t *testing.T) {
	p := sampleProgress()
	p.Achievements = append(p.Achievements, progress.Achievement{
		ID: "retired-badge", Title: "Gone", Icon: "💀", Unlocked: true,
	})
	out, err := Export(p, exportNow)
	require.NoError(t, err)

	got, err := Import(out, exchangeCatalog())
	require.NoError(t, err)
	require.Len(t, got.Achievements, 2)
	assert.Nil(t, got.AchievementByID("retired-badge"))
	assert.True(t, got.AchievementByID("first-steps").Unlocked)
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	_, err := Import([]byte("not-json{"), exchangeCatalog())
	require.Error(t, err)
}

func TestImportRejectsWrongVersion(t *testing.T) {
	out, err := Export(sampleProgress(), exportNow)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	doc["version"] = 2
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Import(raw, exchangeCatalog())
	require.Error(t, err)
}

func TestImportRejectsMissingProgress(t *testing.T) {
	raw := []byte(`{"version":1,"exportedAt":"2024-01-01T00:00:00.000Z"}`)
	_, err := Import(raw, exchangeCatalog())
	require.Error(t, err)
}

func TestImportRejectsUnknownFields(t *testing.T) {
	out, err := Export(sampleProgress(), exportNow)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	doc["extra"] = true
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Import(raw, exchangeCatalog())
	require.Error(t, err)
}

func TestImportRejectsNonCanonicalTimestamp(t *testing.T) {
	out, err := Export(sampleProgress(), exportNow)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	payload := doc["progress"].(map[string]any)
	payload["lastActivityDate"] = "2024-1-1"
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	// The CUE gate only requires a string; the structural validator is what
	// rejects the near-miss timestamp.
	_, err = Import(raw, exchangeCatalog())
	require.Error(t, err)
}

func TestImportRejectsWrongTypedScore(t *testing.T) {
	out, err := Export(sampleProgress(), exportNow)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	payload := doc["progress"].(map[string]any)
	payload["totalScore"] = "25"
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Import(raw, exchangeCatalog())
	require.Error(t, err)
}
