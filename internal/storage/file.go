package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/GBZC2708/procard-api/internal"
)

// fileSnapshot is the on-disk shape: one JSON document holding every table.
type fileSnapshot struct {
	Profiles          []*internal.UserProfile          `json:"profiles"`
	Metrics           []*internal.DailyMetrics         `json:"metrics"`
	Foods             []*internal.FoodItem             `json:"foods"`
	FoodEntries       []*internal.DailyFoodEntry       `json:"food_entries"`
	Supplements       []*internal.SupplementItem       `json:"supplements"`
	SupplementEntries []*internal.DailySupplementEntry `json:"supplement_entries"`
	Exercises         []*internal.WorkoutExercise      `json:"exercises"`
	RoutineDays       []*internal.RoutineDay           `json:"routine_days"`
	Sessions          []*internal.WorkoutSession       `json:"sessions"`
	SetEntries        []*internal.WorkoutSetEntry      `json:"set_entries"`
	SetStats          []*internal.ExerciseSetStats     `json:"set_stats"`
}

// FileStorage keeps everything in memory under a RWMutex and persists a JSON
// snapshot with a debounced background worker. Suitable for the single-user
// on-device deployment; PostgresStorage covers everything bigger.
type FileStorage struct {
	mu sync.RWMutex

	profiles    map[string]*internal.UserProfile          // username -> profile
	metrics     map[string]*internal.DailyMetrics         // username|day -> record
	foods       map[string]*internal.FoodItem             // id -> item
	foodEntries map[string]*internal.DailyFoodEntry       // id -> entry
	supplements map[string]*internal.SupplementItem       // id -> item
	suppEntries map[string]*internal.DailySupplementEntry // id -> entry
	exercises   map[string]*internal.WorkoutExercise      // id -> exercise
	routineDays map[string]*internal.RoutineDay           // username|weekday -> day
	sessions    map[string]*internal.WorkoutSession       // id -> session
	setEntries  map[string]*internal.WorkoutSetEntry      // id -> set
	setStats    map[string]*internal.ExerciseSetStats     // username|exercise|index -> stats

	bus *ChangeBus

	dataFile     string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	logger       internal.Logger
}

func NewFileStorage(dataFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		profiles:     make(map[string]*internal.UserProfile),
		metrics:      make(map[string]*internal.DailyMetrics),
		foods:        make(map[string]*internal.FoodItem),
		foodEntries:  make(map[string]*internal.DailyFoodEntry),
		supplements:  make(map[string]*internal.SupplementItem),
		suppEntries:  make(map[string]*internal.DailySupplementEntry),
		exercises:    make(map[string]*internal.WorkoutExercise),
		routineDays:  make(map[string]*internal.RoutineDay),
		sessions:     make(map[string]*internal.WorkoutSession),
		setEntries:   make(map[string]*internal.WorkoutSetEntry),
		setStats:     make(map[string]*internal.ExerciseSetStats),
		bus:          NewChangeBus(),
		dataFile:     dataFile,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		logger:       logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load data file: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func metricsKey(username string, day int64) string {
	return fmt.Sprintf("%s|%d", username, day)
}

func routineKey(username string, weekday int) string {
	return fmt.Sprintf("%s|%d", username, weekday)
}

func statsKey(username, exerciseID string, setIndex int) string {
	return fmt.Sprintf("%s|%s|%d", username, exerciseID, setIndex)
}

func (s *FileStorage) load() error {
	file, err := os.Open(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var snap fileSnapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range snap.Profiles {
		s.profiles[p.Username] = p
	}
	for _, m := range snap.Metrics {
		s.metrics[metricsKey(m.Username, m.DateEpochDay)] = m
	}
	for _, f := range snap.Foods {
		s.foods[f.ID] = f
	}
	for _, e := range snap.FoodEntries {
		s.foodEntries[e.ID] = e
	}
	for _, it := range snap.Supplements {
		s.supplements[it.ID] = it
	}
	for _, e := range snap.SupplementEntries {
		e.IsInherited = false
		s.suppEntries[e.ID] = e
	}
	for _, e := range snap.Exercises {
		s.exercises[e.ID] = e
	}
	for _, r := range snap.RoutineDays {
		s.routineDays[routineKey(r.Username, r.Weekday)] = r
	}
	for _, sess := range snap.Sessions {
		s.sessions[sess.ID] = sess
	}
	for _, e := range snap.SetEntries {
		s.setEntries[e.ID] = e
	}
	for _, st := range snap.SetStats {
		s.setStats[statsKey(st.Username, st.ExerciseID, st.SetIndex)] = st
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) snapshot() *fileSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &fileSnapshot{
		Profiles:          make([]*internal.UserProfile, 0, len(s.profiles)),
		Metrics:           make([]*internal.DailyMetrics, 0, len(s.metrics)),
		Foods:             make([]*internal.FoodItem, 0, len(s.foods)),
		FoodEntries:       make([]*internal.DailyFoodEntry, 0, len(s.foodEntries)),
		Supplements:       make([]*internal.SupplementItem, 0, len(s.supplements)),
		SupplementEntries: make([]*internal.DailySupplementEntry, 0, len(s.suppEntries)),
		Exercises:         make([]*internal.WorkoutExercise, 0, len(s.exercises)),
		RoutineDays:       make([]*internal.RoutineDay, 0, len(s.routineDays)),
		Sessions:          make([]*internal.WorkoutSession, 0, len(s.sessions)),
		SetEntries:        make([]*internal.WorkoutSetEntry, 0, len(s.setEntries)),
		SetStats:          make([]*internal.ExerciseSetStats, 0, len(s.setStats)),
	}
	for _, p := range s.profiles {
		snap.Profiles = append(snap.Profiles, p)
	}
	for _, m := range s.metrics {
		snap.Metrics = append(snap.Metrics, m)
	}
	for _, f := range s.foods {
		snap.Foods = append(snap.Foods, f)
	}
	for _, e := range s.foodEntries {
		snap.FoodEntries = append(snap.FoodEntries, e)
	}
	for _, it := range s.supplements {
		snap.Supplements = append(snap.Supplements, it)
	}
	for _, e := range s.suppEntries {
		snap.SupplementEntries = append(snap.SupplementEntries, e)
	}
	for _, e := range s.exercises {
		snap.Exercises = append(snap.Exercises, e)
	}
	for _, r := range s.routineDays {
		snap.RoutineDays = append(snap.RoutineDays, r)
	}
	for _, sess := range s.sessions {
		snap.Sessions = append(snap.Sessions, sess)
	}
	for _, e := range s.setEntries {
		snap.SetEntries = append(snap.SetEntries, e)
	}
	for _, st := range s.setStats {
		snap.SetStats = append(snap.SetStats, st)
	}
	return snap
}

func (s *FileStorage) save() error {
	return atomicWriteFileJSON(s.dataFile, s.snapshot())
}

func (s *FileStorage) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving data file: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// markDirty schedules a debounced save and publishes the change event.
func (s *FileStorage) markDirty(table Table, username string) {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
	s.bus.Publish(table, username)
}

func (s *FileStorage) Subscribe(tables ...Table) (<-chan Event, func()) {
	return s.bus.Subscribe(tables...)
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)
	s.bus.CloseAll()
	return s.save()
}

// --- ProfileRepository ---

func (s *FileStorage) GetProfile(ctx context.Context, username string) (*internal.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[username]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *FileStorage) UpsertProfile(ctx context.Context, p *internal.UserProfile) error {
	s.mu.Lock()
	cp := *p
	s.profiles[p.Username] = &cp
	s.mu.Unlock()
	s.markDirty(TableProfiles, p.Username)
	return nil
}

// --- MetricsRepository ---

func (s *FileStorage) UpsertDailyMetrics(ctx context.Context, m *internal.DailyMetrics) error {
	s.mu.Lock()
	cp := *m
	s.metrics[metricsKey(m.Username, m.DateEpochDay)] = &cp
	s.mu.Unlock()
	s.markDirty(TableMetrics, m.Username)
	return nil
}

func (s *FileStorage) GetDailyMetrics(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[metricsKey(username, day)]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *FileStorage) ListDailyMetricsRange(ctx context.Context, username string, from, to int64) ([]internal.DailyMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.DailyMetrics{}
	for _, m := range s.metrics {
		if m.Username == username && m.DateEpochDay >= from && m.DateEpochDay <= to {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateEpochDay < out[j].DateEpochDay })
	return out, nil
}

func (s *FileStorage) GetLastMetricsOnOrBefore(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *internal.DailyMetrics
	for _, m := range s.metrics {
		if m.Username != username || m.DateEpochDay > day {
			continue
		}
		if best == nil || m.DateEpochDay > best.DateEpochDay {
			best = m
		}
	}
	if best == nil {
		return nil, internal.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (s *FileStorage) PurgeDailyMetrics(ctx context.Context, username string) error {
	s.mu.Lock()
	for key, m := range s.metrics {
		if m.Username == username {
			delete(s.metrics, key)
		}
	}
	s.mu.Unlock()
	s.markDirty(TableMetrics, username)
	return nil
}

// --- FoodRepository ---

func (s *FileStorage) SaveFoodItem(ctx context.Context, f *internal.FoodItem) error {
	s.mu.Lock()
	cp := *f
	s.foods[f.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableFoods, f.Username)
	return nil
}

func (s *FileStorage) GetFoodItem(ctx context.Context, id string) (*internal.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.foods[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *FileStorage) ListFoodItems(ctx context.Context, username string) ([]internal.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.FoodItem{}
	for _, f := range s.foods {
		if f.Username == username {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStorage) DeleteFoodItem(ctx context.Context, id string) error {
	s.mu.Lock()
	f, ok := s.foods[id]
	if ok {
		delete(s.foods, id)
	}
	s.mu.Unlock()
	if ok {
		s.markDirty(TableFoods, f.Username)
	}
	return nil
}

func (s *FileStorage) SaveFoodEntry(ctx context.Context, e *internal.DailyFoodEntry) error {
	s.mu.Lock()
	cp := *e
	s.foodEntries[e.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableFoodEntries, e.Username)
	return nil
}

func (s *FileStorage) GetFoodEntry(ctx context.Context, id string) (*internal.DailyFoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.foodEntries[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *FileStorage) ListFoodEntries(ctx context.Context, username string, day int64) ([]internal.DailyFoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.DailyFoodEntry{}
	for _, e := range s.foodEntries {
		if e.Username == username && e.DateEpochDay == day {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStorage) DeleteFoodEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.foodEntries[id]
	if ok {
		delete(s.foodEntries, id)
	}
	s.mu.Unlock()
	if ok {
		s.markDirty(TableFoodEntries, e.Username)
	}
	return nil
}

// --- SupplementRepository ---

func (s *FileStorage) SaveSupplement(ctx context.Context, item *internal.SupplementItem) error {
	s.mu.Lock()
	cp := *item
	s.supplements[item.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableSupplements, item.Username)
	return nil
}

func (s *FileStorage) GetSupplement(ctx context.Context, id string) (*internal.SupplementItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.supplements[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *FileStorage) ListSupplements(ctx context.Context, username string, activeOnly bool) ([]internal.SupplementItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.SupplementItem{}
	for _, item := range s.supplements {
		if item.Username != username {
			continue
		}
		if activeOnly && !item.IsActive {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStorage) SaveSupplementEntry(ctx context.Context, e *internal.DailySupplementEntry) error {
	s.mu.Lock()
	cp := *e
	cp.IsInherited = false
	s.suppEntries[e.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableSupplementEntries, e.Username)
	return nil
}

func (s *FileStorage) ListSupplementEntries(ctx context.Context, username string, day int64) ([]internal.DailySupplementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.DailySupplementEntry{}
	for _, e := range s.suppEntries {
		if e.Username == username && e.DateEpochDay == day {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeSlot != out[j].TimeSlot {
			return internal.SlotOrder(out[i].TimeSlot) < internal.SlotOrder(out[j].TimeSlot)
		}
		if out[i].OrderInSlot != out[j].OrderInSlot {
			return out[i].OrderInSlot < out[j].OrderInSlot
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *FileStorage) DeleteSupplementEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.suppEntries[id]
	if ok {
		delete(s.suppEntries, id)
	}
	s.mu.Unlock()
	if ok {
		s.markDirty(TableSupplementEntries, e.Username)
	}
	return nil
}

func (s *FileStorage) LatestSupplementEntryDayBefore(ctx context.Context, username string, day int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best int64 = -1
	for _, e := range s.suppEntries {
		if e.Username == username && e.DateEpochDay < day && e.DateEpochDay > best {
			best = e.DateEpochDay
		}
	}
	if best < 0 {
		return 0, internal.ErrNotFound
	}
	return best, nil
}

// --- WorkoutRepository ---

func (s *FileStorage) SaveExercise(ctx context.Context, e *internal.WorkoutExercise) error {
	s.mu.Lock()
	cp := *e
	s.exercises[e.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableWorkouts, e.Username)
	return nil
}

func (s *FileStorage) GetExercise(ctx context.Context, id string) (*internal.WorkoutExercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exercises[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *FileStorage) ListExercises(ctx context.Context, username string) ([]internal.WorkoutExercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.WorkoutExercise{}
	for _, e := range s.exercises {
		if e.Username == username {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStorage) SaveRoutineDay(ctx context.Context, r *internal.RoutineDay) error {
	s.mu.Lock()
	cp := *r
	cp.Exercises = append([]internal.RoutineExercise(nil), r.Exercises...)
	s.routineDays[routineKey(r.Username, r.Weekday)] = &cp
	s.mu.Unlock()
	s.markDirty(TableWorkouts, r.Username)
	return nil
}

func (s *FileStorage) GetRoutineDay(ctx context.Context, username string, weekday int) (*internal.RoutineDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routineDays[routineKey(username, weekday)]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *r
	cp.Exercises = append([]internal.RoutineExercise(nil), r.Exercises...)
	return &cp, nil
}

func (s *FileStorage) SaveSession(ctx context.Context, sess *internal.WorkoutSession) error {
	s.mu.Lock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.mu.Unlock()
	s.markDirty(TableWorkouts, sess.Username)
	return nil
}

func (s *FileStorage) GetSession(ctx context.Context, id string) (*internal.WorkoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *FileStorage) FindSessionByDay(ctx context.Context, username string, weekday int, day int64) (*internal.WorkoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// force_new can leave several sessions on one day; resolve to the latest.
	var best *internal.WorkoutSession
	for _, sess := range s.sessions {
		if sess.Username != username || sess.Weekday != weekday || sess.DateEpochDay != day {
			continue
		}
		if best == nil || sess.StartedAtMs > best.StartedAtMs {
			best = sess
		}
	}
	if best == nil {
		return nil, internal.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (s *FileStorage) SaveSetEntry(ctx context.Context, e *internal.WorkoutSetEntry) error {
	s.mu.Lock()
	cp := *e
	s.setEntries[e.ID] = &cp
	sess := s.sessions[e.SessionID]
	s.mu.Unlock()
	username := ""
	if sess != nil {
		username = sess.Username
	}
	s.markDirty(TableWorkouts, username)
	return nil
}

func (s *FileStorage) GetSetEntry(ctx context.Context, id string) (*internal.WorkoutSetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.setEntries[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *FileStorage) ListSetEntries(ctx context.Context, sessionID string) ([]internal.WorkoutSetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.WorkoutSetEntry{}
	for _, e := range s.setEntries {
		if e.SessionID == sessionID {
			out = append(out, *e)
		}
	}
	sortSetEntries(out)
	return out, nil
}

func (s *FileStorage) ListSetEntriesForExercise(ctx context.Context, sessionID, exerciseID string) ([]internal.WorkoutSetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []internal.WorkoutSetEntry{}
	for _, e := range s.setEntries {
		if e.SessionID == sessionID && e.ExerciseID == exerciseID {
			out = append(out, *e)
		}
	}
	sortSetEntries(out)
	return out, nil
}

func sortSetEntries(entries []internal.WorkoutSetEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ExerciseID != entries[j].ExerciseID {
			return entries[i].ExerciseID < entries[j].ExerciseID
		}
		return entries[i].SetIndex < entries[j].SetIndex
	})
}

func (s *FileStorage) DeleteSetEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.setEntries[id]
	if ok {
		delete(s.setEntries, id)
	}
	s.mu.Unlock()
	if ok {
		s.markDirty(TableWorkouts, "")
	}
	return nil
}

func (s *FileStorage) GetSetStats(ctx context.Context, username, exerciseID string, setIndex int) (*internal.ExerciseSetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.setStats[statsKey(username, exerciseID, setIndex)]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *FileStorage) SaveSetStats(ctx context.Context, st *internal.ExerciseSetStats) error {
	s.mu.Lock()
	cp := *st
	s.setStats[statsKey(st.Username, st.ExerciseID, st.SetIndex)] = &cp
	s.mu.Unlock()
	s.markDirty(TableWorkouts, st.Username)
	return nil
}

// --- Compile-time assertion ---
var _ Store = (*FileStorage)(nil)
