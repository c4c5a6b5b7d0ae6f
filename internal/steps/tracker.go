package steps

import (
	"context"
	"sync"
	"time"

	"github.com/GBZC2708/procard-api/internal"
)

// Clock abstracts time so the tracker is deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// SaveSteps persists a day's step total. Wired to the metrics service in the
// composition root.
type SaveSteps func(ctx context.Context, username string, day int64, steps int) error

// Tracker turns an absolute "steps so far today" feed into per-day totals.
// The feed is cumulative since the tracker's baseline, so pausing keeps the
// count and the daily rollover snapshots yesterday's total before resetting.
// The store holds the state of record; the tracker itself can be torn down
// and recreated at any time.
type Tracker struct {
	clock    Clock
	save     SaveSteps
	username string
	interval time.Duration

	mu       sync.Mutex
	running  bool
	steps    int
	day      int64
	dirty    bool

	stop chan struct{}
	done chan struct{}
}

// NewTracker starts the minute poll loop.
func NewTracker(clock Clock, save SaveSteps, username string) *Tracker {
	t := &Tracker{
		clock:    clock,
		save:     save,
		username: username,
		interval: time.Minute,
		running:  true,
		day:      internal.EpochDay(clock.Now()),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.loop()
	return t
}

// SetSteps feeds the current absolute step count for today. Ignored while
// paused; the total freezes until the tracker resumes.
func (t *Tracker) SetSteps(steps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running && steps != t.steps {
		t.steps = steps
		t.dirty = true
	}
}

// SetRunning pauses or resumes counting. Pausing keeps today's total.
func (t *Tracker) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
}

// Steps returns today's total so far.
func (t *Tracker) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}

func (t *Tracker) loop() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			t.Tick()
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Tick is one poll cycle: flush a changed total, and on day rollover snapshot
// the finished day before resetting the baseline. Exported so tests can drive
// it directly with a fake clock.
func (t *Tracker) Tick() {
	now := t.clock.Now()
	today := internal.EpochDay(now)

	t.mu.Lock()
	prevDay := t.day
	prevSteps := t.steps
	dirty := t.dirty
	rolled := today != prevDay
	if rolled {
		t.day = today
		t.steps = 0
	}
	t.dirty = false
	t.mu.Unlock()

	ctx := context.Background()
	if rolled {
		// Final write for the finished day, then start today at zero.
		_ = t.save(ctx, t.username, prevDay, prevSteps)
		_ = t.save(ctx, t.username, today, 0)
		return
	}
	if dirty {
		_ = t.save(ctx, t.username, prevDay, prevSteps)
	}
}

// Close flushes once and stops the loop.
func (t *Tracker) Close() {
	close(t.stop)
	<-t.done
}
