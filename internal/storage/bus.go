package storage

import "sync"

// Table identifies a logical table for change subscriptions.
type Table string

const (
	TableProfiles          Table = "profiles"
	TableMetrics           Table = "metrics"
	TableFoods             Table = "foods"
	TableFoodEntries       Table = "food_entries"
	TableSupplements       Table = "supplements"
	TableSupplementEntries Table = "supplement_entries"
	TableWorkouts          Table = "workouts"
)

// Event is a change notification. Consumers re-read the store; the event
// carries no row data.
type Event struct {
	Table    Table
	Username string
}

type subscriber struct {
	ch     chan Event
	tables map[Table]bool // empty = all tables
}

// ChangeBus is a minimal in-process publish/subscribe hub. Both storage
// backends publish an Event after every successful mutation; slow consumers
// lose events rather than block writers.
type ChangeBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewChangeBus() *ChangeBus {
	return &ChangeBus{subs: make(map[int]*subscriber)}
}

// Subscribe returns a channel of events for the given tables (all tables if
// none given) and a cancel func that closes it.
func (b *ChangeBus) Subscribe(tables ...Table) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:     make(chan Event, 16),
		tables: make(map[Table]bool, len(tables)),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers an event to every matching subscriber without blocking.
func (b *ChangeBus) Publish(table Table, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := Event{Table: table, Username: username}
	for _, sub := range b.subs {
		if len(sub.tables) > 0 && !sub.tables[table] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// CloseAll drops every subscriber. Used on store shutdown.
func (b *ChangeBus) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
