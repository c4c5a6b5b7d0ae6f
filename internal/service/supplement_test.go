package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

func seedPlan(t *testing.T, store storage.Store, day int64) *internal.SupplementItem {
	t.Helper()
	ctx := context.Background()
	item, err := CreateSupplement(ctx, store, "ana", &SupplementRequest{Name: "Creatina", BaseUnit: "g"})
	require.NoError(t, err)
	_, err = AddOrUpdateSupplementEntry(ctx, store, "ana", day, item.ID, internal.SlotDesayuno, 5, "g")
	require.NoError(t, err)
	return item
}

func TestDailyPlanInheritsWithoutWriting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedPlan(t, store, 20200)

	plan, err := DailyPlan(ctx, store, "ana", 20205)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].IsInherited)
	assert.Equal(t, int64(20205), plan[0].DateEpochDay)
	assert.Equal(t, 5.0, plan[0].Amount)

	// Viewing must not materialize anything.
	stored, err := store.ListSupplementEntries(ctx, "ana", 20205)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDailyPlanEmptyWithoutHistory(t *testing.T) {
	store := newTestStore(t)

	plan, err := DailyPlan(context.Background(), store, "ana", 20200)
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)
}

func TestEditForksInheritedPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedPlan(t, store, 20200)

	plan, err := DailyPlan(ctx, store, "ana", 20205)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	updated, err := UpdateSupplementEntryAmount(ctx, store, "ana", 20205, &plan[0], 10)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 10.0, updated.Amount)
	assert.False(t, updated.IsInherited)

	// The fork never back-propagates to the source day.
	source, err := store.ListSupplementEntries(ctx, "ana", 20200)
	require.NoError(t, err)
	require.Len(t, source, 1)
	assert.Equal(t, 5.0, source[0].Amount)
	assert.Equal(t, item.ID, source[0].SupplementID)

	// The forked day now has real rows with their own ids.
	forked, err := store.ListSupplementEntries(ctx, "ana", 20205)
	require.NoError(t, err)
	require.Len(t, forked, 1)
	assert.NotEqual(t, source[0].ID, forked[0].ID)
}

func TestDeleteForksInheritedPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedPlan(t, store, 20200)

	plan, err := DailyPlan(ctx, store, "ana", 20205)
	require.NoError(t, err)
	require.Len(t, plan, 1)

	require.NoError(t, DeleteSupplementEntry(ctx, store, "ana", 20205, &plan[0]))

	forked, err := store.ListSupplementEntries(ctx, "ana", 20205)
	require.NoError(t, err)
	assert.Empty(t, forked)

	source, err := store.ListSupplementEntries(ctx, "ana", 20200)
	require.NoError(t, err)
	assert.Len(t, source, 1)
}

func TestDeactivateHidesFromActiveCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedPlan(t, store, 20200)

	require.NoError(t, DeactivateSupplement(ctx, store, item.ID))

	active, err := store.ListSupplements(ctx, "ana", true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListSupplements(ctx, "ana", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// The old plan still resolves the item.
	plan, err := DailyPlan(ctx, store, "ana", 20200)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, item.ID, plan[0].SupplementID)
}

func TestAddEntryMatchesSupplementAndSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedPlan(t, store, 20200)

	// Same (supplement, slot) updates in place rather than duplicating.
	_, err := AddOrUpdateSupplementEntry(ctx, store, "ana", 20200, item.ID, internal.SlotDesayuno, 7, "g")
	require.NoError(t, err)
	entries, err := store.ListSupplementEntries(ctx, "ana", 20200)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7.0, entries[0].Amount)

	// A different slot inserts a second row.
	_, err = AddOrUpdateSupplementEntry(ctx, store, "ana", 20200, item.ID, internal.SlotCena, 5, "g")
	require.NoError(t, err)
	entries, err = store.ListSupplementEntries(ctx, "ana", 20200)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
