package service

import (
	"math"

	"github.com/GBZC2708/procard-api/internal"
)

// Body-fat targets offered as goal projections, in percent.
var goalBodyFatTargets = []float64{12, 10, 8, 6, 5}

// LowBodyFatAlert is attached to the summary when the estimate drops below
// the essential-fat floor.
const LowBodyFatAlert = "Grasa corporal por debajo del 6%: nivel de riesgo, consulta a un profesional."

// GoalWeight is one projected scale weight at a target body-fat percentage,
// assuming lean mass stays constant.
type GoalWeight struct {
	BodyFatPct float64 `json:"body_fat_pct"`
	WeightKg   float64 `json:"weight_kg"`
}

// MacroTargets holds daily intake targets derived from lean mass and TDEE.
type MacroTargets struct {
	Calories float64  `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	FatG     *float64 `json:"fat_g"`
	CarbG    *float64 `json:"carb_g"`
}

// BodyCompositionSummary carries every derived figure the profile screen
// shows. Nil means the inputs for that figure are missing, which is not the
// same as zero.
type BodyCompositionSummary struct {
	BodyFatPct   *float64 `json:"body_fat_pct"`
	LeanMassKg   *float64 `json:"lean_mass_kg"`
	BMI          *float64 `json:"bmi"`
	FFMI         *float64 `json:"ffmi"`
	BMRKatch     *float64 `json:"bmr_katch"`
	BMRMifflin   *float64 `json:"bmr_mifflin"`
	ActivityKcal *float64 `json:"activity_kcal"`
	TDEE         *float64 `json:"tdee"`

	Macros      *MacroTargets `json:"macros"`
	GoalWeights []GoalWeight  `json:"goal_weights"`

	// WeeklyWeightDeltaKg is kg gained (positive) or lost per week over the
	// window's weight records.
	WeeklyWeightDeltaKg *float64 `json:"weekly_weight_delta_kg"`

	Alert string `json:"alert,omitempty"`
}

func cmToInches(cm float64) float64 { return cm / 2.54 }

func ptr(v float64) *float64 { return &v }

// navyBodyFat estimates body-fat percent from tape measurements using the
// US Navy circumference method. Returns nil when a required measurement is
// missing or non-positive, or the log arguments would be non-positive.
func navyBodyFat(p *internal.UserProfile) *float64 {
	if p.HeightCm <= 0 || p.NeckCm == nil || p.WaistCm == nil {
		return nil
	}
	if *p.NeckCm <= 0 || *p.WaistCm <= 0 {
		return nil
	}
	height := cmToInches(p.HeightCm)
	neck := cmToInches(*p.NeckCm)
	waist := cmToInches(*p.WaistCm)

	var bf float64
	switch p.Sex {
	case internal.SexMale:
		if waist <= neck {
			return nil
		}
		bf = 495/(1.0324-0.19077*math.Log10(waist-neck)+0.15456*math.Log10(height)) - 450
	case internal.SexFemale:
		if p.HipCm == nil || *p.HipCm <= 0 {
			return nil
		}
		hip := cmToInches(*p.HipCm)
		if waist+hip <= neck {
			return nil
		}
		bf = 495/(1.29579-0.35004*math.Log10(waist+hip-neck)+0.22100*math.Log10(height)) - 450
	default:
		return nil
	}
	return &bf
}

// mifflinBMR needs weight, height, age and sex. The sex term is +5 for men
// and -161 for women.
func mifflinBMR(p *internal.UserProfile, weightKg float64) *float64 {
	if weightKg <= 0 || p.HeightCm <= 0 || p.Age <= 0 {
		return nil
	}
	base := 10*weightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	switch p.Sex {
	case internal.SexMale:
		return ptr(base + 5)
	case internal.SexFemale:
		return ptr(base - 161)
	default:
		return nil
	}
}

// activityCalories estimates the day's extra burn from the most recent
// record: steps at 0.04 kcal each, cardio at 7 kcal per minute, plus a flat
// 250 kcal for a weight session.
func activityCalories(m *internal.DailyMetrics) float64 {
	kcal := float64(m.DailySteps)*0.04 + float64(m.CardioMinutes)*7
	if m.TrainingDone {
		kcal += 250
	}
	return kcal
}

// proteinAndFatPerKg returns the per-kg-of-lean-mass protein and fat
// coefficients for the athlete's sex and pharmacology status.
func proteinAndFatPerKg(p *internal.UserProfile) (protein, fat float64) {
	switch {
	case p.Sex == internal.SexFemale && p.UsesPharmacology:
		return 2.1, 0.7
	case p.Sex == internal.SexFemale:
		return 2.45, 0.9
	case p.UsesPharmacology:
		return 2.2, 0.6
	default:
		return 2.45, 0.9
	}
}

// CalculateBodyComposition derives every figure it can from the profile and
// the metrics window (ascending by day). It is pure: no storage, no clock.
// Missing inputs disable the figures that need them and nothing else.
func CalculateBodyComposition(p *internal.UserProfile, window []internal.DailyMetrics) *BodyCompositionSummary {
	s := &BodyCompositionSummary{}

	var latestWeight float64
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].WeightFasted > 0 {
			latestWeight = window[i].WeightFasted
			break
		}
	}

	s.BodyFatPct = navyBodyFat(p)
	if s.BodyFatPct != nil && *s.BodyFatPct < 6 {
		s.Alert = LowBodyFatAlert
	}

	if s.BodyFatPct != nil && latestWeight > 0 {
		s.LeanMassKg = ptr(latestWeight * (1 - *s.BodyFatPct/100))
	}

	if latestWeight > 0 && p.HeightCm > 0 {
		heightM := p.HeightCm / 100
		s.BMI = ptr(latestWeight / (heightM * heightM))
		if s.LeanMassKg != nil {
			s.FFMI = ptr(*s.LeanMassKg / (heightM * heightM))
		}
	}

	if s.LeanMassKg != nil {
		s.BMRKatch = ptr(370 + 21.6**s.LeanMassKg)
	}
	s.BMRMifflin = mifflinBMR(p, latestWeight)

	if len(window) > 0 {
		latest := window[len(window)-1]
		s.ActivityKcal = ptr(activityCalories(&latest))
	}

	// TDEE degrades to activity-only when no BMR is computable, rather than
	// disappearing with it.
	if s.ActivityKcal != nil {
		bmr := 0.0
		if s.BMRMifflin != nil {
			bmr = *s.BMRMifflin
		}
		s.TDEE = ptr(bmr + *s.ActivityKcal)
	}

	if s.TDEE != nil {
		macros := &MacroTargets{Calories: *s.TDEE}
		if s.LeanMassKg != nil {
			proteinPerKg, fatPerKg := proteinAndFatPerKg(p)
			protein := proteinPerKg * *s.LeanMassKg
			fat := fatPerKg * *s.LeanMassKg
			carb := (*s.TDEE - 4*protein - 9*fat) / 4
			if carb < 0 {
				carb = 0
			}
			macros.ProteinG = &protein
			macros.FatG = &fat
			macros.CarbG = &carb
		}
		s.Macros = macros
	}

	if s.LeanMassKg != nil {
		for _, target := range goalBodyFatTargets {
			s.GoalWeights = append(s.GoalWeights, GoalWeight{
				BodyFatPct: target,
				WeightKg:   *s.LeanMassKg / (1 - target/100),
			})
		}
	}

	s.WeeklyWeightDeltaKg = weeklyWeightDelta(window)

	return s
}

// weeklyWeightDelta computes (last - first) weight over the window,
// normalized to kg per week. Needs at least two weight records; the day span
// is floored at 1 so same-day records do not divide by zero.
func weeklyWeightDelta(window []internal.DailyMetrics) *float64 {
	var first, last *internal.DailyMetrics
	for i := range window {
		if window[i].WeightFasted > 0 {
			if first == nil {
				first = &window[i]
			}
			last = &window[i]
		}
	}
	if first == nil || last == nil || first == last {
		return nil
	}
	daySpan := last.DateEpochDay - first.DateEpochDay
	if daySpan < 1 {
		daySpan = 1
	}
	delta := (last.WeightFasted - first.WeightFasted) / (float64(daySpan) / 7)
	return &delta
}
