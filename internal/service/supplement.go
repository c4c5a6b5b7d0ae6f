package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

// SupplementRequest creates or renames a catalog item.
type SupplementRequest struct {
	Name       string   `json:"name" validate:"required,min=1"`
	BaseAmount *float64 `json:"base_amount" validate:"omitempty,gt=0"`
	BaseUnit   string   `json:"base_unit"`
}

func ValidateSupplementRequest(req *SupplementRequest) error {
	return validate.Struct(req)
}

func CreateSupplement(ctx context.Context, repo storage.SupplementRepository, username string, req *SupplementRequest) (*internal.SupplementItem, error) {
	item := &internal.SupplementItem{
		ID:         uuid.NewString(),
		Username:   username,
		Name:       req.Name,
		BaseAmount: req.BaseAmount,
		BaseUnit:   req.BaseUnit,
		IsActive:   true,
	}
	if err := repo.SaveSupplement(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateSupplement rewrites the catalog fields. Stale ids no-op.
func UpdateSupplement(ctx context.Context, repo storage.SupplementRepository, id string, req *SupplementRequest) (*internal.SupplementItem, error) {
	item, err := repo.GetSupplement(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	item.Name = req.Name
	item.BaseAmount = req.BaseAmount
	item.BaseUnit = req.BaseUnit
	if err := repo.SaveSupplement(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeactivateSupplement soft-deletes: the item stops appearing in the active
// catalog but old plan entries keep resolving it.
func DeactivateSupplement(ctx context.Context, repo storage.SupplementRepository, id string) error {
	item, err := repo.GetSupplement(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil
		}
		return err
	}
	item.IsActive = false
	return repo.SaveSupplement(ctx, item)
}

// DailyPlan returns the day's entries. An empty day inherits the most recent
// earlier day's plan: those entries come back remapped to the requested date
// with IsInherited set, without writing anything.
func DailyPlan(ctx context.Context, repo storage.SupplementRepository, username string, day int64) ([]internal.DailySupplementEntry, error) {
	entries, err := repo.ListSupplementEntries(ctx, username, day)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	sourceDay, err := repo.LatestSupplementEntryDayBefore(ctx, username, day)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return []internal.DailySupplementEntry{}, nil
		}
		return nil, err
	}
	source, err := repo.ListSupplementEntries(ctx, username, sourceDay)
	if err != nil {
		return nil, err
	}
	inherited := make([]internal.DailySupplementEntry, len(source))
	for i, e := range source {
		e.DateEpochDay = day
		e.IsInherited = true
		inherited[i] = e
	}
	return inherited, nil
}

// EnsurePlanForDate materializes an inherited plan into real rows before the
// first mutation of an empty day. Days that already have rows are left
// untouched. The current entries the caller is looking at win over a fresh
// lookup so the fork matches what was on screen.
func EnsurePlanForDate(ctx context.Context, repo storage.SupplementRepository, username string, day int64, current []internal.DailySupplementEntry) error {
	existing, err := repo.ListSupplementEntries(ctx, username, day)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	source := current
	if len(source) == 0 {
		sourceDay, err := repo.LatestSupplementEntryDayBefore(ctx, username, day)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				return nil
			}
			return err
		}
		source, err = repo.ListSupplementEntries(ctx, username, sourceDay)
		if err != nil {
			return err
		}
	}

	for _, e := range source {
		e.ID = uuid.NewString()
		e.Username = username
		e.DateEpochDay = day
		e.IsInherited = false
		if err := repo.SaveSupplementEntry(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}

// AddOrUpdateSupplementEntry ensures the plan is materialized, then updates
// the row matching (supplement, slot) or inserts a new one. OrderInSlot is
// preserved on update and defaults to 0 on insert.
func AddOrUpdateSupplementEntry(ctx context.Context, repo storage.SupplementRepository, username string, day int64, supplementID string, slot internal.TimeSlot, amount float64, unit string) (*internal.DailySupplementEntry, error) {
	if err := EnsurePlanForDate(ctx, repo, username, day, nil); err != nil {
		return nil, err
	}

	entries, err := repo.ListSupplementEntries(ctx, username, day)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.SupplementID == supplementID && e.TimeSlot == slot {
			e.Amount = amount
			e.Unit = unit
			if err := repo.SaveSupplementEntry(ctx, &e); err != nil {
				return nil, err
			}
			return &e, nil
		}
	}

	e := internal.DailySupplementEntry{
		ID:           uuid.NewString(),
		Username:     username,
		DateEpochDay: day,
		SupplementID: supplementID,
		TimeSlot:     slot,
		Amount:       amount,
		Unit:         unit,
	}
	if err := repo.SaveSupplementEntry(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// resolvePlanEntry finds the materialized row the caller's (possibly
// inherited) entry refers to: by id when the row survived the fork, else by
// (supplement, slot).
func resolvePlanEntry(entries []internal.DailySupplementEntry, ref *internal.DailySupplementEntry) *internal.DailySupplementEntry {
	for i := range entries {
		if entries[i].ID == ref.ID {
			return &entries[i]
		}
	}
	for i := range entries {
		if entries[i].SupplementID == ref.SupplementID && entries[i].TimeSlot == ref.TimeSlot {
			return &entries[i]
		}
	}
	return nil
}

// UpdateSupplementEntryAmount edits one entry of the day's plan, forking an
// inherited day into real rows first. Editing never touches the source day.
func UpdateSupplementEntryAmount(ctx context.Context, repo storage.SupplementRepository, username string, day int64, ref *internal.DailySupplementEntry, amount float64) (*internal.DailySupplementEntry, error) {
	if err := EnsurePlanForDate(ctx, repo, username, day, nil); err != nil {
		return nil, err
	}
	entries, err := repo.ListSupplementEntries(ctx, username, day)
	if err != nil {
		return nil, err
	}
	target := resolvePlanEntry(entries, ref)
	if target == nil {
		return nil, nil
	}
	target.Amount = amount
	if err := repo.SaveSupplementEntry(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// DeleteSupplementEntry removes one entry of the day's plan with the same
// copy-on-first-write fork as updates.
func DeleteSupplementEntry(ctx context.Context, repo storage.SupplementRepository, username string, day int64, ref *internal.DailySupplementEntry) error {
	if err := EnsurePlanForDate(ctx, repo, username, day, nil); err != nil {
		return err
	}
	entries, err := repo.ListSupplementEntries(ctx, username, day)
	if err != nil {
		return err
	}
	target := resolvePlanEntry(entries, ref)
	if target == nil {
		return nil
	}
	return repo.DeleteSupplementEntry(ctx, target.ID)
}
