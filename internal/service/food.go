package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

// BlankFoodName is the sentinel name a freshly created catalog item carries
// until the user renames it.
const BlankFoodName = "Nuevo alimento"

// CreateBlankFood inserts the sentinel item: 100 g base, zero macros.
func CreateBlankFood(ctx context.Context, repo storage.FoodRepository, username string) (*internal.FoodItem, error) {
	f := &internal.FoodItem{
		ID:         uuid.NewString(),
		Username:   username,
		Name:       BlankFoodName,
		BaseAmount: 100,
		BaseUnit:   "g",
	}
	if err := repo.SaveFoodItem(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// FoodPatchRequest updates only the provided fields of a catalog item.
type FoodPatchRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=1"`
	BaseAmount *float64 `json:"base_amount" validate:"omitempty,gte=0"`
	BaseUnit   *string  `json:"base_unit"`
	ProteinG   *float64 `json:"protein_g" validate:"omitempty,gte=0"`
	FatG       *float64 `json:"fat_g" validate:"omitempty,gte=0"`
	CarbG      *float64 `json:"carb_g" validate:"omitempty,gte=0"`
}

func ValidateFoodPatch(req *FoodPatchRequest) error {
	return validate.Struct(req)
}

// UpdateFood applies the non-nil fields of req as a read-modify-write on the
// item. A stale id is a silent no-op; there is nothing left to edit.
func UpdateFood(ctx context.Context, repo storage.FoodRepository, id string, req *FoodPatchRequest) (*internal.FoodItem, error) {
	f, err := repo.GetFoodItem(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.BaseAmount != nil {
		f.BaseAmount = *req.BaseAmount
	}
	if req.BaseUnit != nil {
		f.BaseUnit = *req.BaseUnit
	}
	if req.ProteinG != nil {
		f.ProteinG = *req.ProteinG
	}
	if req.FatG != nil {
		f.FatG = *req.FatG
	}
	if req.CarbG != nil {
		f.CarbG = *req.CarbG
	}
	if err := repo.SaveFoodItem(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func DeleteFood(ctx context.Context, repo storage.FoodRepository, id string) error {
	return repo.DeleteFoodItem(ctx, id)
}

// AddFoodEntry logs a consumption of the item on the given day, defaulting
// the amount to the item's base amount. A missing item is a real failure
// here; no entry can be sensibly created for it.
func AddFoodEntry(ctx context.Context, repo storage.FoodRepository, username string, day int64, foodID string) (*internal.DailyFoodEntry, error) {
	f, err := repo.GetFoodItem(ctx, foodID)
	if err != nil {
		return nil, err
	}
	e := &internal.DailyFoodEntry{
		ID:             uuid.NewString(),
		Username:       username,
		DateEpochDay:   day,
		FoodID:         f.ID,
		ConsumedAmount: f.BaseAmount,
	}
	if err := repo.SaveFoodEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateConsumedAmount rewrites the entry's amount. Stale ids no-op.
func UpdateConsumedAmount(ctx context.Context, repo storage.FoodRepository, id string, amount float64) (*internal.DailyFoodEntry, error) {
	e, err := repo.GetFoodEntry(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	e.ConsumedAmount = amount
	if err := repo.SaveFoodEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DeleteFoodEntry(ctx context.Context, repo storage.FoodRepository, id string) error {
	return repo.DeleteFoodEntry(ctx, id)
}

// EntryNutrition scales the item's macro profile linearly by
// consumedAmount / baseAmount. A zero base amount scales to zero.
func EntryNutrition(f *internal.FoodItem, e *internal.DailyFoodEntry) internal.NutritionSummary {
	factor := 0.0
	if f.BaseAmount > 0 {
		factor = e.ConsumedAmount / f.BaseAmount
	}
	return internal.NutritionSummary{
		Calories: f.CaloriesBase() * factor,
		ProteinG: f.ProteinG * factor,
		FatG:     f.FatG * factor,
		CarbG:    f.CarbG * factor,
	}
}

// DailyNutritionSummary sums the day's entries field-wise. No entries means
// no summary: nil, not zero. Entries whose item was deleted are skipped.
func DailyNutritionSummary(ctx context.Context, repo storage.FoodRepository, username string, day int64) (*internal.NutritionSummary, error) {
	entries, err := repo.ListFoodEntries(ctx, username, day)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	var sum internal.NutritionSummary
	for i := range entries {
		f, err := repo.GetFoodItem(ctx, entries[i].FoodID)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				continue
			}
			return nil, err
		}
		n := EntryNutrition(f, &entries[i])
		sum.Calories += n.Calories
		sum.ProteinG += n.ProteinG
		sum.FatG += n.FatG
		sum.CarbG += n.CarbG
	}
	return &sum, nil
}

// DayCalories is one point of the weekly chart.
type DayCalories struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
}

// WeeklyCalories returns exactly 7 points for [end-6, end], ascending, with
// zero for days without entries and fixed 3-letter Spanish weekday labels.
func WeeklyCalories(ctx context.Context, repo storage.FoodRepository, username string, endDay int64) ([]DayCalories, error) {
	out := make([]DayCalories, 0, 7)
	for day := endDay - 6; day <= endDay; day++ {
		entries, err := repo.ListFoodEntries(ctx, username, day)
		if err != nil {
			return nil, err
		}
		total := 0.0
		for i := range entries {
			f, err := repo.GetFoodItem(ctx, entries[i].FoodID)
			if err != nil {
				if errors.Is(err, internal.ErrNotFound) {
					continue
				}
				return nil, err
			}
			total += EntryNutrition(f, &entries[i]).Calories
		}
		out = append(out, DayCalories{
			Date:     internal.FormatEpochDay(day),
			Label:    internal.SpanishWeekday(day),
			Calories: total,
		})
	}
	return out, nil
}

// CopyFromYesterday duplicates each of yesterday's entries as new rows dated
// today. Deliberately not idempotent: a second call duplicates everything
// again, so callers gate it behind an explicit user action.
func CopyFromYesterday(ctx context.Context, repo storage.FoodRepository, username string, today int64) ([]internal.DailyFoodEntry, error) {
	yesterday, err := repo.ListFoodEntries(ctx, username, today-1)
	if err != nil {
		return nil, err
	}
	copied := make([]internal.DailyFoodEntry, 0, len(yesterday))
	for _, src := range yesterday {
		e := internal.DailyFoodEntry{
			ID:             uuid.NewString(),
			Username:       username,
			DateEpochDay:   today,
			FoodID:         src.FoodID,
			ConsumedAmount: src.ConsumedAmount,
		}
		if err := repo.SaveFoodEntry(ctx, &e); err != nil {
			return nil, err
		}
		copied = append(copied, e)
	}
	return copied, nil
}

// HasFoodEntries reports whether the day has any entries. Drives the
// "copy from yesterday" affordance.
func HasFoodEntries(ctx context.Context, repo storage.FoodRepository, username string, day int64) (bool, error) {
	entries, err := repo.ListFoodEntries(ctx, username, day)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
