package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) *BadgerKV {
	t.Helper()
	kv, err := OpenKV(KVConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestBadgerKV_GetAbsent(t *testing.T) {
	kv := openTestKV(t)
	v, found, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}

func TestBadgerKV_SetGetDelete(t *testing.T) {
	kv := openTestKV(t)

	require.NoError(t, kv.Set("k", []byte("v1")))
	v, found, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, kv.Set("k", []byte("v2")))
	v, _, err = kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, kv.Delete("k"))
	_, found, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error.
	require.NoError(t, kv.Delete("k"))
}

func TestBadgerKV_KeysPrefixScan(t *testing.T) {
	kv := openTestKV(t)
	for _, k := range []string{
		"progress",
		"progress_corrupted_100",
		"progress_corrupted_200",
		"other",
	} {
		require.NoError(t, kv.Set(k, []byte("x")))
	}

	keys, err := kv.Keys("progress_corrupted_")
	require.NoError(t, err)
	assert.Equal(t, []string{"progress_corrupted_100", "progress_corrupted_200"}, keys)

	keys, err = kv.Keys("nope")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgerKV_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenKV(KVConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, kv.Set("k", []byte("v")))
	require.NoError(t, kv.Close())

	kv, err = OpenKV(KVConfig{Dir: dir})
	require.NoError(t, err)
	defer kv.Close()

	v, found, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}
