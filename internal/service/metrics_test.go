package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	logger := internal.NewLogger("development", "error")
	s, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "test.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetOrCreateDailyMetricsDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m, err := GetOrCreateDailyMetrics(ctx, store, "ana", 20000)
	require.NoError(t, err)
	assert.Equal(t, "ana", m.Username)
	assert.Equal(t, int64(20000), m.DateEpochDay)
	assert.Equal(t, internal.StageDefinicion, m.Stage)
	assert.Zero(t, m.WeightFasted)
	assert.Zero(t, m.DailySteps)
	assert.False(t, m.TrainingDone)

	// Second call returns the stored record, not a fresh default.
	_, err = SaveWeight(ctx, store, "ana", 20000, 71.5)
	require.NoError(t, err)
	m, err = GetOrCreateDailyMetrics(ctx, store, "ana", 20000)
	require.NoError(t, err)
	assert.Equal(t, 71.5, m.WeightFasted)
}

func TestSingleFieldSavesPreserveOtherFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := SaveSteps(ctx, store, "ana", 20001, 8000)
	require.NoError(t, err)
	_, err = SaveWater(ctx, store, "ana", 20001, 2500)
	require.NoError(t, err)
	m, err := SaveStage(ctx, store, "ana", 20001, internal.StageDeficit)
	require.NoError(t, err)

	assert.Equal(t, 8000, m.DailySteps)
	assert.Equal(t, 2500, m.WaterMl)
	assert.Equal(t, internal.StageDeficit, m.Stage)
}

func TestConcurrentFieldSavesBothPersist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := SaveSteps(ctx, store, "ana", 20002, 500)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := SaveWater(ctx, store, "ana", 20002, 2000)
		assert.NoError(t, err)
	}()
	wg.Wait()

	m, err := store.GetDailyMetrics(ctx, "ana", 20002)
	require.NoError(t, err)
	assert.Equal(t, 500, m.DailySteps)
	assert.Equal(t, 2000, m.WaterMl)
}

func TestPurgeMetricsHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for day := int64(20010); day < 20015; day++ {
		_, err := SaveWeight(ctx, store, "ana", day, 70)
		require.NoError(t, err)
	}
	require.NoError(t, PurgeMetricsHistory(ctx, store, "ana"))

	list, err := store.ListDailyMetricsRange(ctx, "ana", 20000, 21000)
	require.NoError(t, err)
	assert.Empty(t, list)
}
