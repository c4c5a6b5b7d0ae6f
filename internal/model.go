package internal

import "time"

// Sex as recorded on the user profile. Empty means the user never picked one.
type Sex string

const (
	SexUnset  Sex = ""
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Stage is the training phase a day belongs to.
type Stage string

const (
	StageDefinicion    Stage = "Definición"
	StageMantenimiento Stage = "Mantenimiento"
	StageDeficit       Stage = "Déficit"
)

func IsValidStage(s string) bool {
	switch Stage(s) {
	case StageDefinicion, StageMantenimiento, StageDeficit:
		return true
	}
	return false
}

// DefaultDisplayName is what a fresh profile is called until the user renames it.
const DefaultDisplayName = "Atleta"

// UserProfile is the per-user singleton: identity, body data and the tape
// measurements the body-composition engine works from. Measurement fields are
// pointers because most users never fill all of them in.
type UserProfile struct {
	Username         string  `json:"username" db:"username"`
	DisplayName      string  `json:"display_name" db:"display_name"`
	Sex              Sex     `json:"sex" db:"sex"`
	Age              int     `json:"age" db:"age"`
	HeightCm         float64 `json:"height_cm" db:"height_cm"`
	UsesPharmacology bool    `json:"uses_pharmacology" db:"uses_pharmacology"`

	NeckCm          *float64 `json:"neck_cm" db:"neck_cm"`
	WaistCm         *float64 `json:"waist_cm" db:"waist_cm"`
	HipCm           *float64 `json:"hip_cm" db:"hip_cm"`
	ChestCm         *float64 `json:"chest_cm" db:"chest_cm"`
	WristCm         *float64 `json:"wrist_cm" db:"wrist_cm"`
	ThighCm         *float64 `json:"thigh_cm" db:"thigh_cm"`
	CalfCm          *float64 `json:"calf_cm" db:"calf_cm"`
	RelaxedBicepsCm *float64 `json:"relaxed_biceps_cm" db:"relaxed_biceps_cm"`
	FlexedBicepsCm  *float64 `json:"flexed_biceps_cm" db:"flexed_biceps_cm"`
	ForearmCm       *float64 `json:"forearm_cm" db:"forearm_cm"`
	FootCm          *float64 `json:"foot_cm" db:"foot_cm"`
}

// NewUserProfile returns the default profile created on first read.
func NewUserProfile(username string) *UserProfile {
	return &UserProfile{
		Username:    username,
		DisplayName: DefaultDisplayName,
		Sex:         SexUnset,
	}
}

// DailyMetrics is one row per (username, epoch day). All single-field saves
// go through the metrics service, which serializes writers per key.
type DailyMetrics struct {
	Username      string  `json:"username" db:"username"`
	DateEpochDay  int64   `json:"date_epoch_day" db:"date_epoch_day"`
	WeightFasted  float64 `json:"weight_fasted" db:"weight_fasted"`
	DailySteps    int     `json:"daily_steps" db:"daily_steps"`
	CardioMinutes int     `json:"cardio_minutes" db:"cardio_minutes"`
	TrainingDone  bool    `json:"training_done" db:"training_done"`
	WaterMl       int     `json:"water_ml" db:"water_ml"`
	SaltGramsX10  int     `json:"salt_grams_x10" db:"salt_grams_x10"`
	SleepMinutes  int     `json:"sleep_minutes" db:"sleep_minutes"`
	Stage         Stage   `json:"stage" db:"stage"`
}

// NewDailyMetrics returns the all-zero record a lazy first write starts from.
func NewDailyMetrics(username string, day int64) *DailyMetrics {
	return &DailyMetrics{Username: username, DateEpochDay: day, Stage: StageDefinicion}
}

// FoodItem is a reusable catalog entry with its macro profile at BaseAmount.
type FoodItem struct {
	ID         string  `json:"id" db:"id"`
	Username   string  `json:"username" db:"username"`
	Name       string  `json:"name" db:"name"`
	BaseAmount float64 `json:"base_amount" db:"base_amount"`
	BaseUnit   string  `json:"base_unit" db:"base_unit"`
	ProteinG   float64 `json:"protein_g" db:"protein_g"`
	FatG       float64 `json:"fat_g" db:"fat_g"`
	CarbG      float64 `json:"carb_g" db:"carb_g"`
}

// CaloriesBase is the kcal content at BaseAmount: 4/4/9 per macro gram.
func (f *FoodItem) CaloriesBase() float64 {
	return 4*f.ProteinG + 4*f.CarbG + 9*f.FatG
}

// DailyFoodEntry records a consumption of a catalog item on a given day.
type DailyFoodEntry struct {
	ID             string  `json:"id" db:"id"`
	Username       string  `json:"username" db:"username"`
	DateEpochDay   int64   `json:"date_epoch_day" db:"date_epoch_day"`
	FoodID         string  `json:"food_id" db:"food_id"`
	ConsumedAmount float64 `json:"consumed_amount" db:"consumed_amount"`
}

// NutritionSummary is the field-wise macro total of a set of entries.
type NutritionSummary struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbG    float64 `json:"carb_g"`
}

// SupplementItem is a catalog entry. Deactivation is a soft delete so old
// daily plans keep resolving their names.
type SupplementItem struct {
	ID         string   `json:"id" db:"id"`
	Username   string   `json:"username" db:"username"`
	Name       string   `json:"name" db:"name"`
	BaseAmount *float64 `json:"base_amount" db:"base_amount"`
	BaseUnit   string   `json:"base_unit" db:"base_unit"`
	IsActive   bool     `json:"is_active" db:"is_active"`
}

// TimeSlot is one of the 16 fixed intake moments a supplement entry is
// grouped under.
type TimeSlot string

const (
	SlotAyunas       TimeSlot = "AYUNAS"
	SlotDesayuno     TimeSlot = "DESAYUNO"
	SlotMediaManana  TimeSlot = "MEDIA_MANANA"
	SlotAlmuerzo     TimeSlot = "ALMUERZO"
	SlotPreEntreno   TimeSlot = "PRE_ENTRENO"
	SlotIntraEntreno TimeSlot = "INTRA_ENTRENO"
	SlotPostEntreno  TimeSlot = "POST_ENTRENO"
	SlotComida       TimeSlot = "COMIDA"
	SlotMerienda     TimeSlot = "MERIENDA"
	SlotPreCena      TimeSlot = "PRE_CENA"
	SlotCena         TimeSlot = "CENA"
	SlotResopon      TimeSlot = "RESOPON"
	SlotAntesDormir  TimeSlot = "ANTES_DORMIR"
	SlotMadrugada    TimeSlot = "MADRUGADA"
	SlotConComida    TimeSlot = "CON_COMIDA"
	SlotLibre        TimeSlot = "LIBRE"
)

// AllTimeSlots lists every slot in day order.
var AllTimeSlots = []TimeSlot{
	SlotAyunas, SlotDesayuno, SlotMediaManana, SlotAlmuerzo,
	SlotPreEntreno, SlotIntraEntreno, SlotPostEntreno, SlotComida,
	SlotMerienda, SlotPreCena, SlotCena, SlotResopon,
	SlotAntesDormir, SlotMadrugada, SlotConComida, SlotLibre,
}

func IsValidTimeSlot(s string) bool {
	for _, slot := range AllTimeSlots {
		if string(slot) == s {
			return true
		}
	}
	return false
}

// SlotOrder returns the position of a slot in the day, for sorting plans.
func SlotOrder(slot TimeSlot) int {
	for i, s := range AllTimeSlots {
		if s == slot {
			return i
		}
	}
	return len(AllTimeSlots)
}

// DailySupplementEntry is one planned intake on a given day. IsInherited is
// only ever true on the virtual projection returned for an empty day; stored
// rows always carry false.
type DailySupplementEntry struct {
	ID           string   `json:"id" db:"id"`
	Username     string   `json:"username" db:"username"`
	DateEpochDay int64    `json:"date_epoch_day" db:"date_epoch_day"`
	SupplementID string   `json:"supplement_id" db:"supplement_id"`
	TimeSlot     TimeSlot `json:"time_slot" db:"time_slot"`
	Amount       float64  `json:"amount" db:"amount"`
	Unit         string   `json:"unit" db:"unit"`
	OrderInSlot  int      `json:"order_in_slot" db:"order_in_slot"`
	IsInherited  bool     `json:"is_inherited" db:"-"`
}

// WorkoutExercise is a catalog entry referenced by routines and set entries.
type WorkoutExercise struct {
	ID          string `json:"id" db:"id"`
	Username    string `json:"username" db:"username"`
	Name        string `json:"name" db:"name"`
	MuscleGroup string `json:"muscle_group" db:"muscle_group"`
}

// RoutineExercise is one ordered slot in a routine day.
type RoutineExercise struct {
	ExerciseID  string `json:"exercise_id"`
	Position    int    `json:"position"`
	DefaultSets int    `json:"default_sets"`
}

// RoutineDay is the template for one of the 7 weekday slots (time.Weekday
// numbering, Sunday = 0).
type RoutineDay struct {
	Username  string            `json:"username"`
	Weekday   int               `json:"weekday"`
	Exercises []RoutineExercise `json:"exercises"`
}

// Session status values. The transition is one-way.
const (
	SessionInProgress = "IN_PROGRESS"
	SessionCompleted  = "COMPLETED"
)

// WorkoutSession is one execution of a routine day on a calendar day.
type WorkoutSession struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Weekday      int    `json:"weekday" db:"weekday"`
	DateEpochDay int64  `json:"date_epoch_day" db:"date_epoch_day"`
	Status       string `json:"status" db:"status"`
	StartedAtMs  int64  `json:"started_at_ms" db:"started_at_ms"`
	DurationMs   *int64 `json:"duration_ms" db:"duration_ms"`
}

// WorkoutSetEntry is one set of one exercise inside a session. SetIndex is
// 1-based.
type WorkoutSetEntry struct {
	ID         string  `json:"id" db:"id"`
	SessionID  string  `json:"session_id" db:"session_id"`
	ExerciseID string  `json:"exercise_id" db:"exercise_id"`
	SetIndex   int     `json:"set_index" db:"set_index"`
	WeightKg   float64 `json:"weight_kg" db:"weight_kg"`
	Reps       int     `json:"reps" db:"reps"`
	Completed  bool    `json:"completed" db:"completed"`
}

// ExerciseSetStats is the personal-best ratchet per (exercise, set index).
// Fields only ever grow; a row is created the first time a session closes
// with that set.
type ExerciseSetStats struct {
	Username    string  `json:"username" db:"username"`
	ExerciseID  string  `json:"exercise_id" db:"exercise_id"`
	SetIndex    int     `json:"set_index" db:"set_index"`
	MaxWeightKg float64 `json:"max_weight_kg" db:"max_weight_kg"`
	MaxReps     int     `json:"max_reps" db:"max_reps"`
}

// --- Date helpers ---

// EpochDay converts a time to its UTC epoch-day number.
func EpochDay(t time.Time) int64 {
	return t.UTC().Unix() / 86400
}

// EpochDayTime returns midnight UTC of the given epoch day.
func EpochDayTime(day int64) time.Time {
	return time.Unix(day*86400, 0).UTC()
}

// ParseEpochDay parses a YYYY-MM-DD string into an epoch day.
func ParseEpochDay(s string) (int64, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, err
	}
	return EpochDay(t), nil
}

// FormatEpochDay renders an epoch day as YYYY-MM-DD.
func FormatEpochDay(day int64) string {
	return EpochDayTime(day).Format("2006-01-02")
}

// spanishWeekdays holds the 3-letter labels used on the weekly chart,
// indexed by time.Weekday (Sunday = 0).
var spanishWeekdays = [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}

// SpanishWeekday returns the 3-letter Spanish label for an epoch day.
func SpanishWeekday(day int64) string {
	return spanishWeekdays[int(EpochDayTime(day).Weekday())]
}
