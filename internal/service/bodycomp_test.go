package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBZC2708/procard-api/internal"
)

func fptr(v float64) *float64 { return &v }

func maleProfile() *internal.UserProfile {
	return &internal.UserProfile{
		Username: "ana",
		Sex:      internal.SexMale,
		Age:      30,
		HeightCm: 180,
		NeckCm:   fptr(38),
		WaistCm:  fptr(80),
	}
}

func TestNavyBodyFatMale(t *testing.T) {
	s := CalculateBodyComposition(maleProfile(), nil)
	require.NotNil(t, s.BodyFatPct)
	assert.InDelta(t, 5.82, *s.BodyFatPct, 0.05)
	// Below the 6% floor, so the alert fires.
	assert.Equal(t, LowBodyFatAlert, s.Alert)
}

func TestNavyBodyFatUnavailableWhenWaistNotOverNeck(t *testing.T) {
	p := maleProfile()
	p.WaistCm = fptr(36)

	s := CalculateBodyComposition(p, nil)
	assert.Nil(t, s.BodyFatPct)
	assert.Nil(t, s.LeanMassKg)
	assert.Empty(t, s.Alert)
}

func TestNavyBodyFatFemaleNeedsHip(t *testing.T) {
	p := &internal.UserProfile{
		Sex:      internal.SexFemale,
		HeightCm: 165,
		NeckCm:   fptr(32),
		WaistCm:  fptr(70),
	}
	s := CalculateBodyComposition(p, nil)
	assert.Nil(t, s.BodyFatPct)

	p.HipCm = fptr(95)
	s = CalculateBodyComposition(p, nil)
	require.NotNil(t, s.BodyFatPct)
	assert.Greater(t, *s.BodyFatPct, 0.0)
}

func TestNavyBodyFatRejectsNonPositiveMeasurements(t *testing.T) {
	p := maleProfile()
	p.NeckCm = fptr(0)
	assert.Nil(t, CalculateBodyComposition(p, nil).BodyFatPct)

	p = maleProfile()
	p.WaistCm = fptr(-5)
	assert.Nil(t, CalculateBodyComposition(p, nil).BodyFatPct)

	female := &internal.UserProfile{
		Sex:      internal.SexFemale,
		HeightCm: 165,
		NeckCm:   fptr(32),
		WaistCm:  fptr(70),
		HipCm:    fptr(0),
	}
	assert.Nil(t, CalculateBodyComposition(female, nil).BodyFatPct)
}

func TestNavyBodyFatUnsetSex(t *testing.T) {
	p := maleProfile()
	p.Sex = internal.SexUnset

	s := CalculateBodyComposition(p, nil)
	assert.Nil(t, s.BodyFatPct)
}

func TestLeanMassAndDerivedFigures(t *testing.T) {
	window := []internal.DailyMetrics{
		{DateEpochDay: 20400, WeightFasted: 70, DailySteps: 10000, CardioMinutes: 20, TrainingDone: true},
	}
	s := CalculateBodyComposition(maleProfile(), window)

	require.NotNil(t, s.LeanMassKg)
	lean := 70 * (1 - *s.BodyFatPct/100)
	assert.InDelta(t, lean, *s.LeanMassKg, 1e-9)

	require.NotNil(t, s.BMI)
	assert.InDelta(t, 70/(1.8*1.8), *s.BMI, 1e-9)
	require.NotNil(t, s.FFMI)
	assert.InDelta(t, lean/(1.8*1.8), *s.FFMI, 1e-9)

	require.NotNil(t, s.BMRKatch)
	assert.InDelta(t, 370+21.6*lean, *s.BMRKatch, 1e-9)
	require.NotNil(t, s.BMRMifflin)
	assert.InDelta(t, 10*70+6.25*180-5*30+5, *s.BMRMifflin, 1e-9)

	// steps*0.04 + cardio*7 + 250 for the trained day.
	require.NotNil(t, s.ActivityKcal)
	assert.InDelta(t, 10000*0.04+20*7+250, *s.ActivityKcal, 1e-9)
	require.NotNil(t, s.TDEE)
	assert.InDelta(t, *s.BMRMifflin+*s.ActivityKcal, *s.TDEE, 1e-9)
}

func TestTDEEFallsBackToActivityOnly(t *testing.T) {
	p := maleProfile()
	p.Age = 0 // Mifflin unavailable

	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 70, DailySteps: 5000}}
	s := CalculateBodyComposition(p, window)

	assert.Nil(t, s.BMRMifflin)
	require.NotNil(t, s.TDEE)
	assert.InDelta(t, 5000*0.04, *s.TDEE, 1e-9)
}

func TestMacroTargets(t *testing.T) {
	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 70, DailySteps: 8000}}
	s := CalculateBodyComposition(maleProfile(), window)

	require.NotNil(t, s.Macros)
	require.NotNil(t, s.Macros.ProteinG)
	lean := *s.LeanMassKg
	assert.InDelta(t, 2.45*lean, *s.Macros.ProteinG, 1e-9)
	assert.InDelta(t, 0.9*lean, *s.Macros.FatG, 1e-9)
	carb := (*s.TDEE - 4**s.Macros.ProteinG - 9**s.Macros.FatG) / 4
	assert.InDelta(t, carb, *s.Macros.CarbG, 1e-9)
}

func TestMacroCarbsFlooredAtZero(t *testing.T) {
	p := maleProfile()
	p.Age = 0 // tiny TDEE
	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 70, DailySteps: 100}}

	s := CalculateBodyComposition(p, window)
	require.NotNil(t, s.Macros)
	require.NotNil(t, s.Macros.CarbG)
	assert.Zero(t, *s.Macros.CarbG)
}

func TestPharmacologyChangesCoefficients(t *testing.T) {
	p := maleProfile()
	p.UsesPharmacology = true
	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 70}}

	s := CalculateBodyComposition(p, window)
	require.NotNil(t, s.Macros)
	lean := *s.LeanMassKg
	assert.InDelta(t, 2.2*lean, *s.Macros.ProteinG, 1e-9)
	assert.InDelta(t, 0.6*lean, *s.Macros.FatG, 1e-9)
}

func TestGoalWeights(t *testing.T) {
	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 70}}
	s := CalculateBodyComposition(maleProfile(), window)

	require.Len(t, s.GoalWeights, 5)
	assert.Equal(t, 12.0, s.GoalWeights[0].BodyFatPct)
	assert.InDelta(t, *s.LeanMassKg/(1-0.12), s.GoalWeights[0].WeightKg, 1e-9)
	assert.Equal(t, 5.0, s.GoalWeights[4].BodyFatPct)
}

func TestWeeklyWeightDelta(t *testing.T) {
	window := []internal.DailyMetrics{
		{DateEpochDay: 20400, WeightFasted: 80},
		{DateEpochDay: 20407, WeightFasted: 0}, // no weight that day
		{DateEpochDay: 20414, WeightFasted: 79},
	}
	s := CalculateBodyComposition(&internal.UserProfile{}, window)
	require.NotNil(t, s.WeeklyWeightDeltaKg)
	assert.InDelta(t, -0.5, *s.WeeklyWeightDeltaKg, 1e-9)
}

func TestWeeklyWeightDeltaNeedsTwoRecords(t *testing.T) {
	window := []internal.DailyMetrics{{DateEpochDay: 20400, WeightFasted: 80}}
	s := CalculateBodyComposition(&internal.UserProfile{}, window)
	assert.Nil(t, s.WeeklyWeightDeltaKg)
}
