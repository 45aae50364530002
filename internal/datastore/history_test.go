package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryDB_RecordAndList(t *testing.T) {
	ctx := context.Background()
	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "db", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	id1, err := db.RecordCycleStart(ctx, "cycle-1", "full", t0)
	require.NoError(t, err)
	require.NoError(t, db.RecordCycleCompletion(ctx, id1, CycleOutcome{
		FinishedAt: t0.Add(time.Minute),
		Status:     CycleStatusCompleted,
		Action:     "notify",
		Summary:    "Model retirement affects billing",
		Changes:    3,
	}))

	_, err = db.RecordCycleStart(ctx, "cycle-2", "sources-only", t0.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = db.RecordCycleStart(ctx, "cycle-1", "full", t0)
	assert.Error(t, err, "cycle IDs are unique")

	entries, err := db.RecentCycles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "cycle-2", entries[0].CycleID)
	assert.Equal(t, CycleStatusStarted, entries[0].Status)
	assert.False(t, entries[0].FinishedAt.Valid)

	assert.Equal(t, "cycle-1", entries[1].CycleID)
	assert.Equal(t, CycleStatusCompleted, entries[1].Status)
	assert.True(t, entries[1].FinishedAt.Valid)
	assert.Equal(t, "notify", entries[1].Action.String)
	assert.Equal(t, 3, entries[1].Changes)

	limited, err := db.RecentCycles(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
