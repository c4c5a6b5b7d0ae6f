package service

import (
	"context"
	"sync"

	"github.com/GBZC2708/procard-api/internal/storage"
)

// bodyCompWindowDays is how far back the engine looks for weight records.
const bodyCompWindowDays = 14

// DashboardCache memoizes the body-composition summary per user and drops
// cached values when the store reports a profile or metrics change. Reads
// between changes are served from memory.
type DashboardCache struct {
	store storage.Store

	mu    sync.Mutex
	cache map[string]*cachedSummary

	cancel func()
	done   chan struct{}
}

type cachedSummary struct {
	day     int64
	summary *BodyCompositionSummary
}

func NewDashboardCache(store storage.Store) *DashboardCache {
	d := &DashboardCache{
		store: store,
		cache: make(map[string]*cachedSummary),
		done:  make(chan struct{}),
	}
	events, cancel := store.Subscribe(storage.TableProfiles, storage.TableMetrics)
	d.cancel = cancel
	go d.watch(events)
	return d
}

func (d *DashboardCache) watch(events <-chan storage.Event) {
	defer close(d.done)
	for ev := range events {
		d.mu.Lock()
		delete(d.cache, ev.Username)
		d.mu.Unlock()
	}
}

// Summary computes the body-composition summary for the user as of today,
// over the trailing metrics window, caching the result until the underlying
// data changes or the day rolls over.
func (d *DashboardCache) Summary(ctx context.Context, username string, today int64) (*BodyCompositionSummary, error) {
	d.mu.Lock()
	if c, ok := d.cache[username]; ok && c.day == today {
		s := c.summary
		d.mu.Unlock()
		return s, nil
	}
	d.mu.Unlock()

	profile, err := GetOrCreateProfile(ctx, d.store, username)
	if err != nil {
		return nil, err
	}
	window, err := d.store.ListDailyMetricsRange(ctx, username, today-bodyCompWindowDays+1, today)
	if err != nil {
		return nil, err
	}
	summary := CalculateBodyComposition(profile, window)

	d.mu.Lock()
	d.cache[username] = &cachedSummary{day: today, summary: summary}
	d.mu.Unlock()
	return summary, nil
}

// Close stops the change watcher.
func (d *DashboardCache) Close() {
	d.cancel()
	<-d.done
}
