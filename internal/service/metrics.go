package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

// keyedMutex serializes writers per string key. Entries are never evicted;
// the key space is one user's edited days, which stays small for the lifetime
// of the process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// dayLocks guards the fetch-modify-upsert cycle of every single-field save.
// Two concurrent field writes to the same (user, day) would otherwise race on
// the whole-record upsert and silently drop one field.
var dayLocks = newKeyedMutex()

func metricsLockKey(username string, day int64) string {
	return fmt.Sprintf("%s|%d", username, day)
}

// fetchOrDefault returns the stored record for (username, day) or the
// all-zero default. Callers must hold the day lock.
func fetchOrDefault(ctx context.Context, repo storage.MetricsRepository, username string, day int64) (*internal.DailyMetrics, error) {
	m, err := repo.GetDailyMetrics(ctx, username, day)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return internal.NewDailyMetrics(username, day), nil
		}
		return nil, err
	}
	return m, nil
}

// GetOrCreateDailyMetrics returns the record for (username, day), inserting
// the all-zero default (stage Definición) when none exists.
func GetOrCreateDailyMetrics(ctx context.Context, repo storage.MetricsRepository, username string, day int64) (*internal.DailyMetrics, error) {
	unlock := dayLocks.lock(metricsLockKey(username, day))
	defer unlock()

	m, err := repo.GetDailyMetrics(ctx, username, day)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}
	m = internal.NewDailyMetrics(username, day)
	if err := repo.UpsertDailyMetrics(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// saveMetricsField runs the fetch-or-default / mutate-one-field / upsert cycle
// under the per-(user, day) lock.
func saveMetricsField(ctx context.Context, repo storage.MetricsRepository, username string, day int64, mutate func(*internal.DailyMetrics)) (*internal.DailyMetrics, error) {
	unlock := dayLocks.lock(metricsLockKey(username, day))
	defer unlock()

	m, err := fetchOrDefault(ctx, repo, username, day)
	if err != nil {
		return nil, err
	}
	mutate(m)
	if err := repo.UpsertDailyMetrics(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func SaveWeight(ctx context.Context, repo storage.MetricsRepository, username string, day int64, weight float64) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.WeightFasted = weight })
}

func SaveSteps(ctx context.Context, repo storage.MetricsRepository, username string, day int64, steps int) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.DailySteps = steps })
}

func SaveCardio(ctx context.Context, repo storage.MetricsRepository, username string, day int64, minutes int) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.CardioMinutes = minutes })
}

func SaveTrainingDone(ctx context.Context, repo storage.MetricsRepository, username string, day int64, done bool) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.TrainingDone = done })
}

func SaveWater(ctx context.Context, repo storage.MetricsRepository, username string, day int64, ml int) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.WaterMl = ml })
}

func SaveSalt(ctx context.Context, repo storage.MetricsRepository, username string, day int64, gramsX10 int) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.SaltGramsX10 = gramsX10 })
}

func SaveSleep(ctx context.Context, repo storage.MetricsRepository, username string, day int64, minutes int) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.SleepMinutes = minutes })
}

func SaveStage(ctx context.Context, repo storage.MetricsRepository, username string, day int64, stage internal.Stage) (*internal.DailyMetrics, error) {
	return saveMetricsField(ctx, repo, username, day, func(m *internal.DailyMetrics) { m.Stage = stage })
}

// PurgeMetricsHistory drops the user's whole metrics history. The only bulk
// delete in the app; everything else is per-row.
func PurgeMetricsHistory(ctx context.Context, repo storage.MetricsRepository, username string) error {
	return repo.PurgeDailyMetrics(ctx, username)
}
