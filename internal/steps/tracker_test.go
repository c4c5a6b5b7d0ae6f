package steps

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type savedTotal struct {
	day   int64
	steps int
}

type recorder struct {
	mu    sync.Mutex
	saves []savedTotal
}

func (r *recorder) save(_ context.Context, _ string, day int64, steps int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, savedTotal{day: day, steps: steps})
	return nil
}

func (r *recorder) all() []savedTotal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]savedTotal(nil), r.saves...)
}

func newTestTracker(t *testing.T, clock *fakeClock, rec *recorder) *Tracker {
	t.Helper()
	tr := NewTracker(clock, rec.save, "ana")
	t.Cleanup(tr.Close)
	return tr
}

func TestTickFlushesChangedTotal(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	tr := newTestTracker(t, clock, rec)
	day := internal.EpochDay(clock.Now())

	tr.SetSteps(1200)
	tr.Tick()
	require.Equal(t, []savedTotal{{day: day, steps: 1200}}, rec.all())

	// Unchanged total is not rewritten.
	tr.Tick()
	assert.Len(t, rec.all(), 1)
}

func TestPausedFeedIsIgnored(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	tr := newTestTracker(t, clock, rec)

	tr.SetSteps(500)
	tr.SetRunning(false)
	tr.SetSteps(900)
	assert.Equal(t, 500, tr.Steps())

	tr.SetRunning(true)
	tr.SetSteps(900)
	assert.Equal(t, 900, tr.Steps())
}

func TestDayRolloverSnapshotsAndResets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)}
	rec := &recorder{}
	tr := newTestTracker(t, clock, rec)
	day := internal.EpochDay(clock.Now())

	tr.SetSteps(7500)
	tr.Tick()

	clock.advance(20 * time.Minute) // crosses midnight UTC
	tr.Tick()

	saves := rec.all()
	require.Len(t, saves, 3)
	// Final total for the finished day, then zero for the new one.
	assert.Equal(t, savedTotal{day: day, steps: 7500}, saves[1])
	assert.Equal(t, savedTotal{day: day + 1, steps: 0}, saves[2])
	assert.Equal(t, 0, tr.Steps())
}
