package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GBZC2708/procard-api/internal"
)

// PostgresStorage implements Store on a pgx connection pool. Change events
// are published from this process only; a multi-writer deployment would need
// LISTEN/NOTIFY, which this single-user app does not.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	bus    *ChangeBus
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStorage{pool: pool, bus: NewChangeBus(), logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgresStorage) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			username TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			sex TEXT NOT NULL DEFAULT '',
			age INT NOT NULL DEFAULT 0,
			height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
			uses_pharmacology BOOLEAN NOT NULL DEFAULT FALSE,
			neck_cm DOUBLE PRECISION,
			waist_cm DOUBLE PRECISION,
			hip_cm DOUBLE PRECISION,
			chest_cm DOUBLE PRECISION,
			wrist_cm DOUBLE PRECISION,
			thigh_cm DOUBLE PRECISION,
			calf_cm DOUBLE PRECISION,
			relaxed_biceps_cm DOUBLE PRECISION,
			flexed_biceps_cm DOUBLE PRECISION,
			forearm_cm DOUBLE PRECISION,
			foot_cm DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			username TEXT NOT NULL,
			date_epoch_day BIGINT NOT NULL,
			weight_fasted DOUBLE PRECISION NOT NULL DEFAULT 0,
			daily_steps INT NOT NULL DEFAULT 0,
			cardio_minutes INT NOT NULL DEFAULT 0,
			training_done BOOLEAN NOT NULL DEFAULT FALSE,
			water_ml INT NOT NULL DEFAULT 0,
			salt_grams_x10 INT NOT NULL DEFAULT 0,
			sleep_minutes INT NOT NULL DEFAULT 0,
			stage TEXT NOT NULL,
			PRIMARY KEY (username, date_epoch_day)
		)`,
		`CREATE TABLE IF NOT EXISTS foods (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			base_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			base_unit TEXT NOT NULL DEFAULT '',
			protein_g DOUBLE PRECISION NOT NULL DEFAULT 0,
			fat_g DOUBLE PRECISION NOT NULL DEFAULT 0,
			carb_g DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS food_entries (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			date_epoch_day BIGINT NOT NULL,
			food_id TEXT NOT NULL,
			consumed_amount DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_food_entries_day ON food_entries (username, date_epoch_day)`,
		`CREATE TABLE IF NOT EXISTS supplements (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			base_amount DOUBLE PRECISION,
			base_unit TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS supplement_entries (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			date_epoch_day BIGINT NOT NULL,
			supplement_id TEXT NOT NULL,
			time_slot TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit TEXT NOT NULL DEFAULT '',
			order_in_slot INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_supplement_entries_day ON supplement_entries (username, date_epoch_day)`,
		`CREATE TABLE IF NOT EXISTS exercises (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			muscle_group TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS routine_days (
			username TEXT NOT NULL,
			weekday INT NOT NULL,
			exercises JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (username, weekday)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			weekday INT NOT NULL,
			date_epoch_day BIGINT NOT NULL,
			status TEXT NOT NULL,
			started_at_ms BIGINT NOT NULL,
			duration_ms BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_day ON sessions (username, weekday, date_epoch_day)`,
		`CREATE TABLE IF NOT EXISTS set_entries (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			set_index INT NOT NULL,
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			reps INT NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_set_entries_session ON set_entries (session_id)`,
		`CREATE TABLE IF NOT EXISTS set_stats (
			username TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			set_index INT NOT NULL,
			max_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			max_reps INT NOT NULL DEFAULT 0,
			PRIMARY KEY (username, exercise_id, set_index)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			p.logger.Errorf("failed to ensure schema: %v", err)
			return err
		}
	}
	return nil
}

// --- Query helpers ---

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is mapped to internal.ErrNotFound.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (*T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

func (p *PostgresStorage) Subscribe(tables ...Table) (<-chan Event, func()) {
	return p.bus.Subscribe(tables...)
}

func (p *PostgresStorage) Close() error {
	p.bus.CloseAll()
	p.pool.Close()
	return nil
}

// --- ProfileRepository ---

const profileCols = `username, display_name, sex, age, height_cm, uses_pharmacology,
	neck_cm, waist_cm, hip_cm, chest_cm, wrist_cm, thigh_cm, calf_cm,
	relaxed_biceps_cm, flexed_biceps_cm, forearm_cm, foot_cm`

func (p *PostgresStorage) GetProfile(ctx context.Context, username string) (*internal.UserProfile, error) {
	return queryOne[internal.UserProfile](ctx, p.pool,
		`SELECT `+profileCols+` FROM profiles WHERE username = @username`,
		pgx.NamedArgs{"username": username})
}

func (p *PostgresStorage) UpsertProfile(ctx context.Context, prof *internal.UserProfile) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO profiles (`+profileCols+`) VALUES
		 (@username, @displayName, @sex, @age, @heightCm, @usesPharmacology,
		  @neckCm, @waistCm, @hipCm, @chestCm, @wristCm, @thighCm, @calfCm,
		  @relaxedBicepsCm, @flexedBicepsCm, @forearmCm, @footCm)
		 ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			sex = EXCLUDED.sex,
			age = EXCLUDED.age,
			height_cm = EXCLUDED.height_cm,
			uses_pharmacology = EXCLUDED.uses_pharmacology,
			neck_cm = EXCLUDED.neck_cm,
			waist_cm = EXCLUDED.waist_cm,
			hip_cm = EXCLUDED.hip_cm,
			chest_cm = EXCLUDED.chest_cm,
			wrist_cm = EXCLUDED.wrist_cm,
			thigh_cm = EXCLUDED.thigh_cm,
			calf_cm = EXCLUDED.calf_cm,
			relaxed_biceps_cm = EXCLUDED.relaxed_biceps_cm,
			flexed_biceps_cm = EXCLUDED.flexed_biceps_cm,
			forearm_cm = EXCLUDED.forearm_cm,
			foot_cm = EXCLUDED.foot_cm`,
		pgx.NamedArgs{
			"username": prof.Username, "displayName": prof.DisplayName,
			"sex": prof.Sex, "age": prof.Age, "heightCm": prof.HeightCm,
			"usesPharmacology": prof.UsesPharmacology,
			"neckCm":           prof.NeckCm, "waistCm": prof.WaistCm, "hipCm": prof.HipCm,
			"chestCm": prof.ChestCm, "wristCm": prof.WristCm, "thighCm": prof.ThighCm,
			"calfCm": prof.CalfCm, "relaxedBicepsCm": prof.RelaxedBicepsCm,
			"flexedBicepsCm": prof.FlexedBicepsCm, "forearmCm": prof.ForearmCm,
			"footCm": prof.FootCm,
		})
	if err != nil {
		p.logger.Errorf("failed to upsert profile: %v", err)
		return err
	}
	p.bus.Publish(TableProfiles, prof.Username)
	return nil
}

// --- MetricsRepository ---

const metricsCols = `username, date_epoch_day, weight_fasted, daily_steps,
	cardio_minutes, training_done, water_ml, salt_grams_x10, sleep_minutes, stage`

func (p *PostgresStorage) UpsertDailyMetrics(ctx context.Context, m *internal.DailyMetrics) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO daily_metrics (`+metricsCols+`) VALUES
		 (@username, @day, @weight, @steps, @cardio, @training, @water, @salt, @sleep, @stage)
		 ON CONFLICT (username, date_epoch_day) DO UPDATE SET
			weight_fasted = EXCLUDED.weight_fasted,
			daily_steps = EXCLUDED.daily_steps,
			cardio_minutes = EXCLUDED.cardio_minutes,
			training_done = EXCLUDED.training_done,
			water_ml = EXCLUDED.water_ml,
			salt_grams_x10 = EXCLUDED.salt_grams_x10,
			sleep_minutes = EXCLUDED.sleep_minutes,
			stage = EXCLUDED.stage`,
		pgx.NamedArgs{
			"username": m.Username, "day": m.DateEpochDay, "weight": m.WeightFasted,
			"steps": m.DailySteps, "cardio": m.CardioMinutes, "training": m.TrainingDone,
			"water": m.WaterMl, "salt": m.SaltGramsX10, "sleep": m.SleepMinutes,
			"stage": m.Stage,
		})
	if err != nil {
		p.logger.Errorf("failed to upsert daily metrics: %v", err)
		return err
	}
	p.bus.Publish(TableMetrics, m.Username)
	return nil
}

func (p *PostgresStorage) GetDailyMetrics(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error) {
	return queryOne[internal.DailyMetrics](ctx, p.pool,
		`SELECT `+metricsCols+` FROM daily_metrics
		 WHERE username = @username AND date_epoch_day = @day`,
		pgx.NamedArgs{"username": username, "day": day})
}

func (p *PostgresStorage) ListDailyMetricsRange(ctx context.Context, username string, from, to int64) ([]internal.DailyMetrics, error) {
	return queryMany[internal.DailyMetrics](ctx, p.pool,
		`SELECT `+metricsCols+` FROM daily_metrics
		 WHERE username = @username AND date_epoch_day >= @from AND date_epoch_day <= @to
		 ORDER BY date_epoch_day ASC`,
		pgx.NamedArgs{"username": username, "from": from, "to": to})
}

func (p *PostgresStorage) GetLastMetricsOnOrBefore(ctx context.Context, username string, day int64) (*internal.DailyMetrics, error) {
	return queryOne[internal.DailyMetrics](ctx, p.pool,
		`SELECT `+metricsCols+` FROM daily_metrics
		 WHERE username = @username AND date_epoch_day <= @day
		 ORDER BY date_epoch_day DESC LIMIT 1`,
		pgx.NamedArgs{"username": username, "day": day})
}

func (p *PostgresStorage) PurgeDailyMetrics(ctx context.Context, username string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM daily_metrics WHERE username = @username`,
		pgx.NamedArgs{"username": username})
	if err != nil {
		return err
	}
	p.bus.Publish(TableMetrics, username)
	return nil
}

// --- FoodRepository ---

func (p *PostgresStorage) SaveFoodItem(ctx context.Context, f *internal.FoodItem) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO foods (id, username, name, base_amount, base_unit, protein_g, fat_g, carb_g)
		 VALUES (@id, @username, @name, @baseAmount, @baseUnit, @protein, @fat, @carb)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			base_amount = EXCLUDED.base_amount,
			base_unit = EXCLUDED.base_unit,
			protein_g = EXCLUDED.protein_g,
			fat_g = EXCLUDED.fat_g,
			carb_g = EXCLUDED.carb_g`,
		pgx.NamedArgs{
			"id": f.ID, "username": f.Username, "name": f.Name,
			"baseAmount": f.BaseAmount, "baseUnit": f.BaseUnit,
			"protein": f.ProteinG, "fat": f.FatG, "carb": f.CarbG,
		})
	if err != nil {
		p.logger.Errorf("failed to save food item: %v", err)
		return err
	}
	p.bus.Publish(TableFoods, f.Username)
	return nil
}

func (p *PostgresStorage) GetFoodItem(ctx context.Context, id string) (*internal.FoodItem, error) {
	return queryOne[internal.FoodItem](ctx, p.pool,
		`SELECT id, username, name, base_amount, base_unit, protein_g, fat_g, carb_g
		 FROM foods WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) ListFoodItems(ctx context.Context, username string) ([]internal.FoodItem, error) {
	return queryMany[internal.FoodItem](ctx, p.pool,
		`SELECT id, username, name, base_amount, base_unit, protein_g, fat_g, carb_g
		 FROM foods WHERE username = @username ORDER BY name ASC`,
		pgx.NamedArgs{"username": username})
}

func (p *PostgresStorage) DeleteFoodItem(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM foods WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return err
	}
	p.bus.Publish(TableFoods, "")
	return nil
}

func (p *PostgresStorage) SaveFoodEntry(ctx context.Context, e *internal.DailyFoodEntry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO food_entries (id, username, date_epoch_day, food_id, consumed_amount)
		 VALUES (@id, @username, @day, @foodID, @amount)
		 ON CONFLICT (id) DO UPDATE SET consumed_amount = EXCLUDED.consumed_amount`,
		pgx.NamedArgs{
			"id": e.ID, "username": e.Username, "day": e.DateEpochDay,
			"foodID": e.FoodID, "amount": e.ConsumedAmount,
		})
	if err != nil {
		p.logger.Errorf("failed to save food entry: %v", err)
		return err
	}
	p.bus.Publish(TableFoodEntries, e.Username)
	return nil
}

func (p *PostgresStorage) GetFoodEntry(ctx context.Context, id string) (*internal.DailyFoodEntry, error) {
	return queryOne[internal.DailyFoodEntry](ctx, p.pool,
		`SELECT id, username, date_epoch_day, food_id, consumed_amount
		 FROM food_entries WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) ListFoodEntries(ctx context.Context, username string, day int64) ([]internal.DailyFoodEntry, error) {
	return queryMany[internal.DailyFoodEntry](ctx, p.pool,
		`SELECT id, username, date_epoch_day, food_id, consumed_amount
		 FROM food_entries WHERE username = @username AND date_epoch_day = @day
		 ORDER BY id ASC`,
		pgx.NamedArgs{"username": username, "day": day})
}

func (p *PostgresStorage) DeleteFoodEntry(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM food_entries WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return err
	}
	p.bus.Publish(TableFoodEntries, "")
	return nil
}

// --- SupplementRepository ---

func (p *PostgresStorage) SaveSupplement(ctx context.Context, s *internal.SupplementItem) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO supplements (id, username, name, base_amount, base_unit, is_active)
		 VALUES (@id, @username, @name, @baseAmount, @baseUnit, @isActive)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			base_amount = EXCLUDED.base_amount,
			base_unit = EXCLUDED.base_unit,
			is_active = EXCLUDED.is_active`,
		pgx.NamedArgs{
			"id": s.ID, "username": s.Username, "name": s.Name,
			"baseAmount": s.BaseAmount, "baseUnit": s.BaseUnit, "isActive": s.IsActive,
		})
	if err != nil {
		p.logger.Errorf("failed to save supplement: %v", err)
		return err
	}
	p.bus.Publish(TableSupplements, s.Username)
	return nil
}

func (p *PostgresStorage) GetSupplement(ctx context.Context, id string) (*internal.SupplementItem, error) {
	return queryOne[internal.SupplementItem](ctx, p.pool,
		`SELECT id, username, name, base_amount, base_unit, is_active
		 FROM supplements WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) ListSupplements(ctx context.Context, username string, activeOnly bool) ([]internal.SupplementItem, error) {
	return queryMany[internal.SupplementItem](ctx, p.pool,
		`SELECT id, username, name, base_amount, base_unit, is_active
		 FROM supplements
		 WHERE username = @username AND (is_active OR NOT @activeOnly)
		 ORDER BY name ASC`,
		pgx.NamedArgs{"username": username, "activeOnly": activeOnly})
}

// suppEntryRow mirrors DailySupplementEntry minus the virtual IsInherited flag.
type suppEntryRow struct {
	ID           string            `db:"id"`
	Username     string            `db:"username"`
	DateEpochDay int64             `db:"date_epoch_day"`
	SupplementID string            `db:"supplement_id"`
	TimeSlot     internal.TimeSlot `db:"time_slot"`
	Amount       float64           `db:"amount"`
	Unit         string            `db:"unit"`
	OrderInSlot  int               `db:"order_in_slot"`
}

func (r suppEntryRow) toModel() internal.DailySupplementEntry {
	return internal.DailySupplementEntry{
		ID: r.ID, Username: r.Username, DateEpochDay: r.DateEpochDay,
		SupplementID: r.SupplementID, TimeSlot: r.TimeSlot,
		Amount: r.Amount, Unit: r.Unit, OrderInSlot: r.OrderInSlot,
	}
}

func (p *PostgresStorage) SaveSupplementEntry(ctx context.Context, e *internal.DailySupplementEntry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO supplement_entries
			(id, username, date_epoch_day, supplement_id, time_slot, amount, unit, order_in_slot)
		 VALUES (@id, @username, @day, @supplementID, @timeSlot, @amount, @unit, @orderInSlot)
		 ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			unit = EXCLUDED.unit,
			time_slot = EXCLUDED.time_slot,
			order_in_slot = EXCLUDED.order_in_slot`,
		pgx.NamedArgs{
			"id": e.ID, "username": e.Username, "day": e.DateEpochDay,
			"supplementID": e.SupplementID, "timeSlot": e.TimeSlot,
			"amount": e.Amount, "unit": e.Unit, "orderInSlot": e.OrderInSlot,
		})
	if err != nil {
		p.logger.Errorf("failed to save supplement entry: %v", err)
		return err
	}
	p.bus.Publish(TableSupplementEntries, e.Username)
	return nil
}

func (p *PostgresStorage) ListSupplementEntries(ctx context.Context, username string, day int64) ([]internal.DailySupplementEntry, error) {
	rows, err := queryMany[suppEntryRow](ctx, p.pool,
		`SELECT id, username, date_epoch_day, supplement_id, time_slot, amount, unit, order_in_slot
		 FROM supplement_entries
		 WHERE username = @username AND date_epoch_day = @day
		 ORDER BY order_in_slot ASC, id ASC`,
		pgx.NamedArgs{"username": username, "day": day})
	if err != nil {
		return nil, err
	}
	out := make([]internal.DailySupplementEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (p *PostgresStorage) DeleteSupplementEntry(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM supplement_entries WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return err
	}
	p.bus.Publish(TableSupplementEntries, "")
	return nil
}

func (p *PostgresStorage) LatestSupplementEntryDayBefore(ctx context.Context, username string, day int64) (int64, error) {
	var latest int64
	err := p.pool.QueryRow(ctx,
		`SELECT date_epoch_day FROM supplement_entries
		 WHERE username = @username AND date_epoch_day < @day
		 ORDER BY date_epoch_day DESC LIMIT 1`,
		pgx.NamedArgs{"username": username, "day": day}).Scan(&latest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, internal.ErrNotFound
		}
		return 0, err
	}
	return latest, nil
}

// --- WorkoutRepository ---

func (p *PostgresStorage) SaveExercise(ctx context.Context, e *internal.WorkoutExercise) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO exercises (id, username, name, muscle_group)
		 VALUES (@id, @username, @name, @muscleGroup)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			muscle_group = EXCLUDED.muscle_group`,
		pgx.NamedArgs{"id": e.ID, "username": e.Username, "name": e.Name, "muscleGroup": e.MuscleGroup})
	if err != nil {
		return err
	}
	p.bus.Publish(TableWorkouts, e.Username)
	return nil
}

func (p *PostgresStorage) GetExercise(ctx context.Context, id string) (*internal.WorkoutExercise, error) {
	return queryOne[internal.WorkoutExercise](ctx, p.pool,
		`SELECT id, username, name, muscle_group FROM exercises WHERE id = @id`,
		pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) ListExercises(ctx context.Context, username string) ([]internal.WorkoutExercise, error) {
	return queryMany[internal.WorkoutExercise](ctx, p.pool,
		`SELECT id, username, name, muscle_group FROM exercises
		 WHERE username = @username ORDER BY name ASC`,
		pgx.NamedArgs{"username": username})
}

func (p *PostgresStorage) SaveRoutineDay(ctx context.Context, r *internal.RoutineDay) error {
	exercises, err := json.Marshal(r.Exercises)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO routine_days (username, weekday, exercises)
		 VALUES (@username, @weekday, @exercises)
		 ON CONFLICT (username, weekday) DO UPDATE SET exercises = EXCLUDED.exercises`,
		pgx.NamedArgs{"username": r.Username, "weekday": r.Weekday, "exercises": exercises})
	if err != nil {
		return err
	}
	p.bus.Publish(TableWorkouts, r.Username)
	return nil
}

func (p *PostgresStorage) GetRoutineDay(ctx context.Context, username string, weekday int) (*internal.RoutineDay, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT exercises FROM routine_days WHERE username = @username AND weekday = @weekday`,
		pgx.NamedArgs{"username": username, "weekday": weekday}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	r := &internal.RoutineDay{Username: username, Weekday: weekday}
	if err := json.Unmarshal(raw, &r.Exercises); err != nil {
		return nil, err
	}
	return r, nil
}

const sessionCols = `id, username, weekday, date_epoch_day, status, started_at_ms, duration_ms`

func (p *PostgresStorage) SaveSession(ctx context.Context, s *internal.WorkoutSession) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sessions (`+sessionCols+`)
		 VALUES (@id, @username, @weekday, @day, @status, @startedAtMs, @durationMs)
		 ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			duration_ms = EXCLUDED.duration_ms`,
		pgx.NamedArgs{
			"id": s.ID, "username": s.Username, "weekday": s.Weekday,
			"day": s.DateEpochDay, "status": s.Status,
			"startedAtMs": s.StartedAtMs, "durationMs": s.DurationMs,
		})
	if err != nil {
		p.logger.Errorf("failed to save session: %v", err)
		return err
	}
	p.bus.Publish(TableWorkouts, s.Username)
	return nil
}

func (p *PostgresStorage) GetSession(ctx context.Context, id string) (*internal.WorkoutSession, error) {
	return queryOne[internal.WorkoutSession](ctx, p.pool,
		`SELECT `+sessionCols+` FROM sessions WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) FindSessionByDay(ctx context.Context, username string, weekday int, day int64) (*internal.WorkoutSession, error) {
	// force_new can leave several sessions on one day; resolve to the latest.
	return queryOne[internal.WorkoutSession](ctx, p.pool,
		`SELECT `+sessionCols+` FROM sessions
		 WHERE username = @username AND weekday = @weekday AND date_epoch_day = @day
		 ORDER BY started_at_ms DESC LIMIT 1`,
		pgx.NamedArgs{"username": username, "weekday": weekday, "day": day})
}

const setEntryCols = `id, session_id, exercise_id, set_index, weight_kg, reps, completed`

func (p *PostgresStorage) SaveSetEntry(ctx context.Context, e *internal.WorkoutSetEntry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO set_entries (`+setEntryCols+`)
		 VALUES (@id, @sessionID, @exerciseID, @setIndex, @weightKg, @reps, @completed)
		 ON CONFLICT (id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			reps = EXCLUDED.reps,
			completed = EXCLUDED.completed`,
		pgx.NamedArgs{
			"id": e.ID, "sessionID": e.SessionID, "exerciseID": e.ExerciseID,
			"setIndex": e.SetIndex, "weightKg": e.WeightKg, "reps": e.Reps,
			"completed": e.Completed,
		})
	if err != nil {
		return err
	}
	p.bus.Publish(TableWorkouts, "")
	return nil
}

func (p *PostgresStorage) GetSetEntry(ctx context.Context, id string) (*internal.WorkoutSetEntry, error) {
	return queryOne[internal.WorkoutSetEntry](ctx, p.pool,
		`SELECT `+setEntryCols+` FROM set_entries WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (p *PostgresStorage) ListSetEntries(ctx context.Context, sessionID string) ([]internal.WorkoutSetEntry, error) {
	return queryMany[internal.WorkoutSetEntry](ctx, p.pool,
		`SELECT `+setEntryCols+` FROM set_entries
		 WHERE session_id = @sessionID ORDER BY exercise_id ASC, set_index ASC`,
		pgx.NamedArgs{"sessionID": sessionID})
}

func (p *PostgresStorage) ListSetEntriesForExercise(ctx context.Context, sessionID, exerciseID string) ([]internal.WorkoutSetEntry, error) {
	return queryMany[internal.WorkoutSetEntry](ctx, p.pool,
		`SELECT `+setEntryCols+` FROM set_entries
		 WHERE session_id = @sessionID AND exercise_id = @exerciseID
		 ORDER BY set_index ASC`,
		pgx.NamedArgs{"sessionID": sessionID, "exerciseID": exerciseID})
}

func (p *PostgresStorage) DeleteSetEntry(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM set_entries WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return err
	}
	p.bus.Publish(TableWorkouts, "")
	return nil
}

func (p *PostgresStorage) GetSetStats(ctx context.Context, username, exerciseID string, setIndex int) (*internal.ExerciseSetStats, error) {
	return queryOne[internal.ExerciseSetStats](ctx, p.pool,
		`SELECT username, exercise_id, set_index, max_weight_kg, max_reps
		 FROM set_stats
		 WHERE username = @username AND exercise_id = @exerciseID AND set_index = @setIndex`,
		pgx.NamedArgs{"username": username, "exerciseID": exerciseID, "setIndex": setIndex})
}

func (p *PostgresStorage) SaveSetStats(ctx context.Context, s *internal.ExerciseSetStats) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO set_stats (username, exercise_id, set_index, max_weight_kg, max_reps)
		 VALUES (@username, @exerciseID, @setIndex, @maxWeightKg, @maxReps)
		 ON CONFLICT (username, exercise_id, set_index) DO UPDATE SET
			max_weight_kg = EXCLUDED.max_weight_kg,
			max_reps = EXCLUDED.max_reps`,
		pgx.NamedArgs{
			"username": s.Username, "exerciseID": s.ExerciseID, "setIndex": s.SetIndex,
			"maxWeightKg": s.MaxWeightKg, "maxReps": s.MaxReps,
		})
	if err != nil {
		return err
	}
	p.bus.Publish(TableWorkouts, s.Username)
	return nil
}

// --- Compile-time assertion ---
var _ Store = (*PostgresStorage)(nil)
