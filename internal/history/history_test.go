package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/budget-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	for i, file := range []string{"jan.csv", "feb.csv", "mar.csv"} {
		_, err := store.Record(ctx, Run{
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			InputFile: file,
			Stats:     models.ResolutionStats{Total: 10 + i, Manual: 1, AutoRule: 5, ProductDefault: 2, Unassigned: 2 + i},
		})
		require.NoError(t, err)
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "mar.csv", runs[0].InputFile)
	assert.Equal(t, "feb.csv", runs[1].InputFile)
	assert.Equal(t, models.ResolutionStats{Total: 12, Manual: 1, AutoRule: 5, ProductDefault: 2, Unassigned: 4}, runs[0].Stats)
	assert.True(t, base.Add(2*time.Hour).Equal(runs[0].StartedAt))
	assert.NotEmpty(t, runs[0].ID)
}

func TestStore_RecordFillsDefaults(t *testing.T) {
	store := openMemory(t)

	run, err := store.Record(context.Background(), Run{InputFile: "lines.csv"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())
}

func TestStore_RecordDuplicateID(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	_, err := store.Record(ctx, Run{ID: "run-1", InputFile: "a.csv"})
	require.NoError(t, err)
	_, err = store.Record(ctx, Run{ID: "run-1", InputFile: "b.csv"})
	assert.Error(t, err)
}

func TestStore_RecentNonPositiveLimit(t *testing.T) {
	store := openMemory(t)

	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Record(ctx, Run{InputFile: "lines.csv", Stats: models.ResolutionStats{Total: 1, Manual: 1}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	assert.Equal(t, path, reopened.Path())

	runs, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Stats.Manual)
}
