package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func rec(seq int64, kind string) Record {
	return Record{
		Seq:        seq,
		Token:      "tok-" + kind,
		Kind:       kind,
		Payload:    `{}`,
		RecordedAt: "2024-01-01T00:00:00.000Z",
	}
}

func TestJournal_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	require.NoError(t, j.Append(ctx, rec(1, "complete_activity")))
	require.NoError(t, j.Append(ctx, rec(2, "complete_section")))
	require.NoError(t, j.Append(ctx, rec(3, "unlock_achievement")))

	got, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(3), got[2].Seq)
	assert.Equal(t, "complete_section", got[1].Kind)
	assert.Equal(t, "tok-complete_section", got[1].Token)
}

func TestJournal_RecentLimitKeepsNewest(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	for seq := int64(1); seq <= 5; seq++ {
		require.NoError(t, j.Append(ctx, rec(seq, "complete_activity")))
	}

	got, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest two, still in ascending order.
	assert.Equal(t, int64(4), got[0].Seq)
	assert.Equal(t, int64(5), got[1].Seq)
}

func TestJournal_AppendIdempotentOnSeq(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	require.NoError(t, j.Append(ctx, rec(1, "complete_activity")))
	dupe := rec(1, "complete_section")
	require.NoError(t, j.Append(ctx, dupe))

	got, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// First write wins.
	assert.Equal(t, "complete_activity", got[0].Kind)
}

func TestJournal_LastSeq(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	seq, err := j.LastSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)

	require.NoError(t, j.Append(ctx, rec(7, "complete_activity")))
	seq, err = j.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, rec(1, "complete_activity")))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	seq, err := j.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}
