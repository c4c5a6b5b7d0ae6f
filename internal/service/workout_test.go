package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

func seedRoutine(t *testing.T, store storage.Store, defaultSets int) *internal.WorkoutExercise {
	t.Helper()
	ctx := context.Background()
	ex, err := CreateExercise(ctx, store, "ana", &ExerciseRequest{Name: "Sentadilla", MuscleGroup: "Pierna"})
	require.NoError(t, err)
	_, err = SaveRoutineDay(ctx, store, "ana", 1, &RoutineDayRequest{
		Exercises: []RoutineExerciseRequest{{ExerciseID: ex.ID, DefaultSets: defaultSets}},
	})
	require.NoError(t, err)
	return ex
}

func TestCreateSessionInstantiatesDefaultSets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ex := seedRoutine(t, store, 3)

	sess, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)
	assert.Equal(t, internal.SessionInProgress, sess.Status)

	sets, err := store.ListSetEntries(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	for i, s := range sets {
		assert.Equal(t, ex.ID, s.ExerciseID)
		assert.Equal(t, i+1, s.SetIndex)
	}
}

func TestCreateSessionResumesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRoutine(t, store, 2)

	first, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)
	second, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 2000, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1000), second.StartedAtMs)
}

func TestForceNewStartsFreshSessionOnSameDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRoutine(t, store, 2)

	first, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)
	second, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 2000, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// A later resume lands on the most recently started session.
	resumed, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 3000, false)
	require.NoError(t, err)
	assert.Equal(t, second.ID, resumed.ID)
	assert.Equal(t, int64(2000), resumed.StartedAtMs)
}

func TestAddSetUsesMaxPlusOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ex := seedRoutine(t, store, 2)

	sess, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)

	added, err := AddSet(ctx, store, sess.ID, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, added.SetIndex)
}

func TestRemoveLastSetRefusesFinalSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ex := seedRoutine(t, store, 2)

	sess, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)

	require.NoError(t, RemoveLastSet(ctx, store, sess.ID, ex.ID))
	err = RemoveLastSet(ctx, store, sess.ID, ex.ID)
	assert.ErrorIs(t, err, internal.ErrLastSet)

	sets, err := store.ListSetEntriesForExercise(ctx, sess.ID, ex.ID)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}

func recordSet(t *testing.T, store storage.Store, sessionID, exerciseID string, weight float64, reps int) {
	t.Helper()
	ctx := context.Background()
	sets, err := store.ListSetEntriesForExercise(ctx, sessionID, exerciseID)
	require.NoError(t, err)
	require.NotEmpty(t, sets)
	done := true
	_, err = UpdateSetEntry(ctx, store, sets[0].ID, &SetPatchRequest{WeightKg: &weight, Reps: &reps, Completed: &done})
	require.NoError(t, err)
}

func TestBestStatsRatchetNeverDecreases(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ex := seedRoutine(t, store, 1)

	s1, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 1000, false)
	require.NoError(t, err)
	recordSet(t, store, s1.ID, ex.ID, 50, 8)
	_, err = CloseSession(ctx, store, s1.ID, 5000)
	require.NoError(t, err)

	stats, err := store.GetSetStats(ctx, "ana", ex.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.MaxWeightKg)
	assert.Equal(t, 8, stats.MaxReps)

	// A lighter session keeps the 50.
	s2, err := CreateOrResumeSession(ctx, store, "ana", 1, 20307, 6000, false)
	require.NoError(t, err)
	recordSet(t, store, s2.ID, ex.ID, 40, 10)
	_, err = CloseSession(ctx, store, s2.ID, 9000)
	require.NoError(t, err)

	stats, err = store.GetSetStats(ctx, "ana", ex.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.MaxWeightKg)
	// Reps improve independently of weight.
	assert.Equal(t, 10, stats.MaxReps)
}

func TestCloseSessionClampsDurationAndIsOneWay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRoutine(t, store, 1)

	sess, err := CreateOrResumeSession(ctx, store, "ana", 1, 20300, 10_000, false)
	require.NoError(t, err)

	closed, err := CloseSession(ctx, store, sess.ID, 4_000)
	require.NoError(t, err)
	assert.Equal(t, internal.SessionCompleted, closed.Status)
	require.NotNil(t, closed.DurationMs)
	assert.Equal(t, int64(0), *closed.DurationMs)

	// Closing again changes nothing.
	again, err := CloseSession(ctx, store, sess.ID, 99_000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *again.DurationMs)
}
