package storage

import (
	"context"

	"github.com/GBZC2708/procard-api/internal"
)

type ProfileRepository interface {
	// GetProfile returns internal.ErrNotFound when the user has no profile yet.
	GetProfile(ctx context.Context, username string) (*internal.UserProfile, error)
	UpsertProfile(ctx context.Context, p *internal.UserProfile) error
}

type MetricsRepository interface {
	UpsertDailyMetrics(ctx context.Context, m *internal.DailyMetrics) error
	GetDailyMetrics(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error)
	// ListDailyMetricsRange returns records with from <= day <= to, ascending.
	ListDailyMetricsRange(ctx context.Context, username string, from, to int64) ([]internal.DailyMetrics, error)
	// GetLastMetricsOnOrBefore returns the most recent record with a date on
	// or before day, or internal.ErrNotFound.
	GetLastMetricsOnOrBefore(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error)
	// PurgeDailyMetrics drops the user's whole metrics history.
	PurgeDailyMetrics(ctx context.Context, username string) error
}

type FoodRepository interface {
	SaveFoodItem(ctx context.Context, f *internal.FoodItem) error
	GetFoodItem(ctx context.Context, id string) (*internal.FoodItem, error)
	ListFoodItems(ctx context.Context, username string) ([]internal.FoodItem, error)
	DeleteFoodItem(ctx context.Context, id string) error

	SaveFoodEntry(ctx context.Context, e *internal.DailyFoodEntry) error
	GetFoodEntry(ctx context.Context, id string) (*internal.DailyFoodEntry, error)
	ListFoodEntries(ctx context.Context, username string, day int64) ([]internal.DailyFoodEntry, error)
	DeleteFoodEntry(ctx context.Context, id string) error
}

type SupplementRepository interface {
	SaveSupplement(ctx context.Context, s *internal.SupplementItem) error
	GetSupplement(ctx context.Context, id string) (*internal.SupplementItem, error)
	ListSupplements(ctx context.Context, username string, activeOnly bool) ([]internal.SupplementItem, error)

	SaveSupplementEntry(ctx context.Context, e *internal.DailySupplementEntry) error
	ListSupplementEntries(ctx context.Context, username string, day int64) ([]internal.DailySupplementEntry, error)
	DeleteSupplementEntry(ctx context.Context, id string) error
	// LatestSupplementEntryDayBefore returns the most recent day strictly
	// before day that has at least one entry, or internal.ErrNotFound.
	LatestSupplementEntryDayBefore(ctx context.Context, username string, day int64) (int64, error)
}

type WorkoutRepository interface {
	SaveExercise(ctx context.Context, e *internal.WorkoutExercise) error
	GetExercise(ctx context.Context, id string) (*internal.WorkoutExercise, error)
	ListExercises(ctx context.Context, username string) ([]internal.WorkoutExercise, error)

	SaveRoutineDay(ctx context.Context, r *internal.RoutineDay) error
	GetRoutineDay(ctx context.Context, username string, weekday int) (*internal.RoutineDay, error)

	SaveSession(ctx context.Context, s *internal.WorkoutSession) error
	GetSession(ctx context.Context, id string) (*internal.WorkoutSession, error)
	// FindSessionByDay locates the session for (username, weekday, day), if any.
	FindSessionByDay(ctx context.Context, username string, weekday int, day int64) (*internal.WorkoutSession, error)

	SaveSetEntry(ctx context.Context, e *internal.WorkoutSetEntry) error
	GetSetEntry(ctx context.Context, id string) (*internal.WorkoutSetEntry, error)
	// ListSetEntries returns a session's sets ordered by (exercise, set index).
	ListSetEntries(ctx context.Context, sessionID string) ([]internal.WorkoutSetEntry, error)
	ListSetEntriesForExercise(ctx context.Context, sessionID, exerciseID string) ([]internal.WorkoutSetEntry, error)
	DeleteSetEntry(ctx context.Context, id string) error

	GetSetStats(ctx context.Context, username, exerciseID string, setIndex int) (*internal.ExerciseSetStats, error)
	SaveSetStats(ctx context.Context, s *internal.ExerciseSetStats) error
}

// Store is everything a backend must provide: the repositories plus change
// subscription and teardown.
type Store interface {
	ProfileRepository
	MetricsRepository
	FoodRepository
	SupplementRepository
	WorkoutRepository

	Subscribe(tables ...Table) (<-chan Event, func())
	Close() error
}
