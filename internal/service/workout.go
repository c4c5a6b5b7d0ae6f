package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

// ExerciseRequest creates or renames a catalog exercise.
type ExerciseRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	MuscleGroup string `json:"muscle_group"`
}

func ValidateExerciseRequest(req *ExerciseRequest) error {
	return validate.Struct(req)
}

func CreateExercise(ctx context.Context, repo storage.WorkoutRepository, username string, req *ExerciseRequest) (*internal.WorkoutExercise, error) {
	e := &internal.WorkoutExercise{
		ID:          uuid.NewString(),
		Username:    username,
		Name:        req.Name,
		MuscleGroup: req.MuscleGroup,
	}
	if err := repo.SaveExercise(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RoutineDayRequest replaces one weekday slot of the routine template.
type RoutineDayRequest struct {
	Exercises []RoutineExerciseRequest `json:"exercises" validate:"dive"`
}

type RoutineExerciseRequest struct {
	ExerciseID  string `json:"exercise_id" validate:"required"`
	DefaultSets int    `json:"default_sets" validate:"gte=1"`
}

func ValidateRoutineDayRequest(req *RoutineDayRequest) error {
	return validate.Struct(req)
}

func SaveRoutineDay(ctx context.Context, repo storage.WorkoutRepository, username string, weekday int, req *RoutineDayRequest) (*internal.RoutineDay, error) {
	r := &internal.RoutineDay{Username: username, Weekday: weekday}
	for i, ex := range req.Exercises {
		r.Exercises = append(r.Exercises, internal.RoutineExercise{
			ExerciseID:  ex.ExerciseID,
			Position:    i,
			DefaultSets: ex.DefaultSets,
		})
	}
	if err := repo.SaveRoutineDay(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateOrResumeSession returns the existing session for (weekday, day)
// unchanged when one exists and forceNew is false; completed sessions are
// returned too, as "view". Otherwise it creates the session and eagerly
// instantiates the routine's default sets, numbered from 1.
func CreateOrResumeSession(ctx context.Context, repo storage.WorkoutRepository, username string, weekday int, day int64, startedAtMs int64, forceNew bool) (*internal.WorkoutSession, error) {
	existing, err := repo.FindSessionByDay(ctx, username, weekday, day)
	if err == nil && !forceNew {
		return existing, nil
	}
	if err != nil && !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}

	routine, err := repo.GetRoutineDay(ctx, username, weekday)
	if err != nil {
		if !errors.Is(err, internal.ErrNotFound) {
			return nil, err
		}
		routine = &internal.RoutineDay{Username: username, Weekday: weekday}
	}

	sess := &internal.WorkoutSession{
		ID:           uuid.NewString(),
		Username:     username,
		Weekday:      weekday,
		DateEpochDay: day,
		Status:       internal.SessionInProgress,
		StartedAtMs:  startedAtMs,
	}
	if err := repo.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	for _, ex := range routine.Exercises {
		sets := ex.DefaultSets
		if sets < 1 {
			sets = 1
		}
		for i := 1; i <= sets; i++ {
			entry := &internal.WorkoutSetEntry{
				ID:         uuid.NewString(),
				SessionID:  sess.ID,
				ExerciseID: ex.ExerciseID,
				SetIndex:   i,
			}
			if err := repo.SaveSetEntry(ctx, entry); err != nil {
				return nil, err
			}
		}
	}
	return sess, nil
}

// AddSet appends a set at max(existing index)+1 for the exercise.
func AddSet(ctx context.Context, repo storage.WorkoutRepository, sessionID, exerciseID string) (*internal.WorkoutSetEntry, error) {
	existing, err := repo.ListSetEntriesForExercise(ctx, sessionID, exerciseID)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, e := range existing {
		if e.SetIndex >= next {
			next = e.SetIndex + 1
		}
	}
	entry := &internal.WorkoutSetEntry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		SetIndex:   next,
	}
	if err := repo.SaveSetEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveLastSet deletes the highest-indexed set of the exercise, refusing
// with ErrLastSet when only one remains. Every exercise keeps at least one
// set.
func RemoveLastSet(ctx context.Context, repo storage.WorkoutRepository, sessionID, exerciseID string) error {
	existing, err := repo.ListSetEntriesForExercise(ctx, sessionID, exerciseID)
	if err != nil {
		return err
	}
	if len(existing) <= 1 {
		return internal.ErrLastSet
	}
	last := existing[0]
	for _, e := range existing[1:] {
		if e.SetIndex > last.SetIndex {
			last = e
		}
	}
	return repo.DeleteSetEntry(ctx, last.ID)
}

// SetPatchRequest edits one set's recorded weight/reps/completion.
type SetPatchRequest struct {
	WeightKg  *float64 `json:"weight_kg" validate:"omitempty,gte=0"`
	Reps      *int     `json:"reps" validate:"omitempty,gte=0"`
	Completed *bool    `json:"completed"`
}

func ValidateSetPatch(req *SetPatchRequest) error {
	return validate.Struct(req)
}

// UpdateSetEntry applies the non-nil fields. Stale ids no-op.
func UpdateSetEntry(ctx context.Context, repo storage.WorkoutRepository, id string, req *SetPatchRequest) (*internal.WorkoutSetEntry, error) {
	e, err := repo.GetSetEntry(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if req.WeightKg != nil {
		e.WeightKg = *req.WeightKg
	}
	if req.Reps != nil {
		e.Reps = *req.Reps
	}
	if req.Completed != nil {
		e.Completed = *req.Completed
	}
	if err := repo.SaveSetEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CalculateBestStats runs the personal-best ratchet over a session's sets.
// Weight and reps improve independently: a set may raise the best weight
// while a different set raises the best reps. Existing bests never decrease.
func CalculateBestStats(ctx context.Context, repo storage.WorkoutRepository, sess *internal.WorkoutSession) error {
	sets, err := repo.ListSetEntries(ctx, sess.ID)
	if err != nil {
		return err
	}
	for _, set := range sets {
		stats, err := repo.GetSetStats(ctx, sess.Username, set.ExerciseID, set.SetIndex)
		if err != nil {
			if !errors.Is(err, internal.ErrNotFound) {
				return err
			}
			stats = &internal.ExerciseSetStats{
				Username:    sess.Username,
				ExerciseID:  set.ExerciseID,
				SetIndex:    set.SetIndex,
				MaxWeightKg: set.WeightKg,
				MaxReps:     set.Reps,
			}
			if err := repo.SaveSetStats(ctx, stats); err != nil {
				return err
			}
			continue
		}

		improved := false
		if set.WeightKg > stats.MaxWeightKg {
			stats.MaxWeightKg = set.WeightKg
			improved = true
		}
		if set.Reps > stats.MaxReps {
			stats.MaxReps = set.Reps
			improved = true
		}
		if improved {
			if err := repo.SaveSetStats(ctx, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

// CloseSession computes the elapsed duration (clamped at zero), marks the
// session completed and runs the best-stats ratchet. Closing an already
// completed session is a no-op; the transition is one-way.
func CloseSession(ctx context.Context, repo storage.WorkoutRepository, sessionID string, endedAtMs int64) (*internal.WorkoutSession, error) {
	sess, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == internal.SessionCompleted {
		return sess, nil
	}

	duration := endedAtMs - sess.StartedAtMs
	if duration < 0 {
		duration = 0
	}
	sess.Status = internal.SessionCompleted
	sess.DurationMs = &duration
	if err := repo.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	if err := CalculateBestStats(ctx, repo, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
