package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/questlog/internal/progress"
)

var adapterNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeKV is an in-memory KV with programmable write failures, for paths a
// real store cannot reproduce on demand (quota exhaustion, hard errors).
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	setErr  error // returned by the next Set calls while non-nil
	setErrN int   // if > 0, setErr clears after this many failures
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		err := f.setErr
		if f.setErrN > 0 {
			f.setErrN--
			if f.setErrN == 0 {
				f.setErr = nil
			}
		}
		return err
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeKV) Close() error { return nil }

func adapterCatalog() []progress.Achievement {
	return []progress.Achievement{
		{ID: "first-steps", Title: "Primeros Pasos", Icon: "🎯"},
		{ID: "completionist", Title: "Completista", Icon: "🏆"},
	}
}

func newTestAdapter(kv KV) *Adapter {
	return NewAdapter(kv, adapterCatalog(),
		WithNow(func() time.Time { return adapterNow }),
	)
}

func TestAdapter_LoadFreshInstall(t *testing.T) {
	a := newTestAdapter(newFakeKV())
	assert.Nil(t, a.Load())
}

func TestAdapter_SaveThenLoad(t *testing.T) {
	kv := newFakeKV()
	a := newTestAdapter(kv)

	at := adapterNow.Add(-time.Hour)
	p := progress.UserProgress{
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

	require.True(t, a.Save(p))

	got := a.Load()
	require.NotNil(t, got)
	assert.Equal(t, p, *got)
}

func TestAdapter_SaveWritesVersionedEnvelope(t *testing.T) {
	kv := newFakeKV()
	a := newTestAdapter(kv)
	require.True(t, a.Save(progress.UserProgress{CurrentSection: "intro"}))

	raw, found, err := kv.Get(DefaultKey)
	require.NoError(t, err)
	require.True(t, found)

	var env map[string]any
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, float64(CurrentSchemaVersion), env["version"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", env["timestamp"])
	assert.NotEmpty(t, env["checksum"])

	data, ok := env["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "intro", data["currentSection"])
}

func TestAdapter_LoadQuarantinesUnparseableText(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = []byte("invalid-json{")
	a := newTestAdapter(kv)

	assert.Nil(t, a.Load())

	keys, err := a.ListQuarantine()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	expected := DefaultKey + "_corrupted_" + fmt.Sprint(adapterNow.UnixMilli())
	assert.Equal(t, expected, keys[0])
	assert.Equal(t, []byte("invalid-json{"), kv.data[keys[0]])
}

func TestAdapter_LoadDiscardsInvalidPayload(t *testing.T) {
	kv := newFakeKV()
	// Parses fine, but totalScore has the wrong type.
	kv.data[DefaultKey] = []byte(`{"currentSection":"intro","completedSections":[],"completedActivities":[],"totalScore":"50","streakCount":0,"achievements":[]}`)
	a := newTestAdapter(kv)

	assert.Nil(t, a.Load())

	// Parseable-but-invalid is discarded, not quarantined.
	keys, err := a.ListQuarantine()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAdapter_LoadLegacyUnwrappedRecord(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = []byte(`{"currentSection":"intro","completedSections":[],"completedActivities":["a1","a2"],"totalScore":50,"streakCount":2,"achievements":[{"id":"first-steps","title":"Primeros Pasos","description":"","icon":"🎯","unlocked":true,"unlockedAt":"2024-01-01T00:00:00.000Z"}]}`)
	a := newTestAdapter(kv)

	got := a.Load()
	require.NotNil(t, got)
	assert.Equal(t, 50, got.TotalScore)
	assert.Equal(t, []string{"a1", "a2"}, got.CompletedActivities)

	// Reconciled against the catalog: both entries present, unlock kept.
	require.Len(t, got.Achievements, 2)
	first := got.AchievementByID("first-steps")
	require.NotNil(t, first)
	assert.True(t, first.Unlocked)
}

func TestAdapter_LoadVersionMismatchIsLenient(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = []byte(`{"version":99,"data":{"currentSection":"intro","completedSections":[],"completedActivities":[],"totalScore":10,"streakCount":1,"achievements":[]}}`)
	a := newTestAdapter(kv)

	got := a.Load()
	require.NotNil(t, got)
	assert.Equal(t, 10, got.TotalScore)
}

func TestAdapter_LoadChecksumMismatchStillLoads(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = []byte(`{"version":1,"checksum":"deadbeef","data":{"currentSection":"intro","completedSections":[],"completedActivities":[],"totalScore":10,"streakCount":1,"achievements":[]}}`)
	a := newTestAdapter(kv)

	got := a.Load()
	require.NotNil(t, got)
	assert.Equal(t, 10, got.TotalScore)
}

func TestAdapter_SaveQuotaRecovery(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey+"_corrupted_100"] = []byte("old1")
	kv.data[DefaultKey+"_corrupted_200"] = []byte("old2")
	kv.setErr = fmt.Errorf("set: %w", ErrQuotaExceeded)
	kv.setErrN = 1 // first write fails, retry succeeds

	a := newTestAdapter(kv)
	assert.True(t, a.Save(progress.UserProgress{CurrentSection: "intro"}))

	// Backups were pruned to make room.
	keys, err := a.ListQuarantine()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, found, err := kv.Get(DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAdapter_SaveQuotaRetryAlsoFails(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = ErrQuotaExceeded // never clears

	a := newTestAdapter(kv)
	assert.False(t, a.Save(progress.UserProgress{CurrentSection: "intro"}))
}

func TestAdapter_SaveHardErrorReturnsFalse(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = fmt.Errorf("disk detached")

	a := newTestAdapter(kv)
	assert.False(t, a.Save(progress.UserProgress{CurrentSection: "intro"}))
}

func TestAdapter_PurgeQuarantine(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey+"_corrupted_100"] = []byte("x")
	kv.data[DefaultKey+"_corrupted_200"] = []byte("y")
	kv.data[DefaultKey] = []byte("live")

	a := newTestAdapter(kv)
	pruned, err := a.PurgeQuarantine()
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	// The primary key survives a purge.
	_, found, err := kv.Get(DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAdapter_WithKey(t *testing.T) {
	kv := newFakeKV()
	a := NewAdapter(kv, adapterCatalog(), WithKey("alt-key"))
	require.True(t, a.Save(progress.UserProgress{CurrentSection: "intro"}))

	_, found, err := kv.Get("alt-key")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = kv.Get(DefaultKey)
	require.NoError(t, err)
	assert.False(t, found)
}
