package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
)

func TestCreateBlankFoodDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, err := CreateBlankFood(ctx, store, "ana")
	require.NoError(t, err)
	assert.Equal(t, BlankFoodName, f.Name)
	assert.Equal(t, 100.0, f.BaseAmount)
	assert.Equal(t, "g", f.BaseUnit)
	assert.Zero(t, f.CaloriesBase())
}

func TestEntryNutritionScalesLinearly(t *testing.T) {
	f := &internal.FoodItem{BaseAmount: 100, ProteinG: 20, CarbG: 10, FatG: 5}
	e := &internal.DailyFoodEntry{ConsumedAmount: 200}

	n := EntryNutrition(f, e)
	// 4*20 + 4*10 + 9*5 = 165 kcal per 100 g, doubled.
	assert.InDelta(t, 330, n.Calories, 1e-9)
	assert.InDelta(t, 40, n.ProteinG, 1e-9)
	assert.InDelta(t, 20, n.CarbG, 1e-9)
	assert.InDelta(t, 10, n.FatG, 1e-9)
}

func TestEntryNutritionZeroBaseAmount(t *testing.T) {
	f := &internal.FoodItem{BaseAmount: 0, ProteinG: 20}
	e := &internal.DailyFoodEntry{ConsumedAmount: 150}

	n := EntryNutrition(f, e)
	assert.Zero(t, n.Calories)
	assert.Zero(t, n.ProteinG)
}

func TestDailyNutritionSummaryNilWhenEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sum, err := DailyNutritionSummary(ctx, store, "ana", 20100)
	require.NoError(t, err)
	assert.Nil(t, sum)
}

func TestDailyNutritionSummarySums(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, err := CreateBlankFood(ctx, store, "ana")
	require.NoError(t, err)
	protein := 25.0
	_, err = UpdateFood(ctx, store, f.ID, &FoodPatchRequest{ProteinG: &protein})
	require.NoError(t, err)

	_, err = AddFoodEntry(ctx, store, "ana", 20100, f.ID)
	require.NoError(t, err)
	_, err = AddFoodEntry(ctx, store, "ana", 20100, f.ID)
	require.NoError(t, err)

	sum, err := DailyNutritionSummary(ctx, store, "ana", 20100)
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.InDelta(t, 50, sum.ProteinG, 1e-9)
	assert.InDelta(t, 200, sum.Calories, 1e-9)
}

func TestAddFoodEntryUnknownFood(t *testing.T) {
	store := newTestStore(t)

	_, err := AddFoodEntry(context.Background(), store, "ana", 20100, "missing")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestWeeklyCaloriesAlwaysSevenPoints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, err := CreateBlankFood(ctx, store, "ana")
	require.NoError(t, err)
	carb := 50.0
	_, err = UpdateFood(ctx, store, f.ID, &FoodPatchRequest{CarbG: &carb})
	require.NoError(t, err)
	_, err = AddFoodEntry(ctx, store, "ana", 20103, f.ID)
	require.NoError(t, err)

	week, err := WeeklyCalories(ctx, store, "ana", 20106)
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, internal.FormatEpochDay(20100), week[0].Date)
	assert.Equal(t, internal.FormatEpochDay(20106), week[6].Date)
	assert.InDelta(t, 200, week[3].Calories, 1e-9)
	for i, p := range week {
		if i != 3 {
			assert.Zero(t, p.Calories)
		}
		assert.Equal(t, internal.SpanishWeekday(20100+int64(i)), p.Label)
	}
}

func TestCopyFromYesterdayDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f, err := CreateBlankFood(ctx, store, "ana")
	require.NoError(t, err)
	src, err := AddFoodEntry(ctx, store, "ana", 20109, f.ID)
	require.NoError(t, err)
	_, err = UpdateConsumedAmount(ctx, store, src.ID, 250)
	require.NoError(t, err)

	copied, err := CopyFromYesterday(ctx, store, "ana", 20110)
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.NotEqual(t, src.ID, copied[0].ID)
	assert.Equal(t, int64(20110), copied[0].DateEpochDay)
	assert.Equal(t, 250.0, copied[0].ConsumedAmount)

	// Not idempotent: a second call duplicates again.
	_, err = CopyFromYesterday(ctx, store, "ana", 20110)
	require.NoError(t, err)
	entries, err := store.ListFoodEntries(ctx, "ana", 20110)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHasFoodEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	has, err := HasFoodEntries(ctx, store, "ana", 20100)
	require.NoError(t, err)
	assert.False(t, has)

	f, err := CreateBlankFood(ctx, store, "ana")
	require.NoError(t, err)
	_, err = AddFoodEntry(ctx, store, "ana", 20100, f.ID)
	require.NoError(t, err)

	has, err = HasFoodEntries(ctx, store, "ana", 20100)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUpdateFoodStaleIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	name := "Avena"

	f, err := UpdateFood(context.Background(), store, "missing", &FoodPatchRequest{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, f)
}
