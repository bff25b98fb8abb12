package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePhase(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	profile := &CycleProfile{StartDate: start, CycleLengthDays: 28, PeriodLengthDays: 5}

	tests := []struct {
		name   string
		offset int
		want   PhaseInfo
	}{
		{"start day", 0, PhaseInfo{CycleDay: 1, Phase: PhaseMenstrual}},
		{"last menstrual day", 4, PhaseInfo{CycleDay: 5, Phase: PhaseMenstrual}},
		{"first follicular day", 5, PhaseInfo{CycleDay: 6, Phase: PhaseFollicular}},
		{"ovulatory start", 13, PhaseInfo{CycleDay: 14, Phase: PhaseOvulatory}},
		{"ovulatory end", 15, PhaseInfo{CycleDay: 16, Phase: PhaseOvulatory}},
		{"luteal start", 16, PhaseInfo{CycleDay: 17, Phase: PhaseLuteal}},
		{"last cycle day", 27, PhaseInfo{CycleDay: 28, Phase: PhaseLuteal}},
		{"wraps to day one", 28, PhaseInfo{CycleDay: 1, Phase: PhaseMenstrual}},
		{"second cycle", 28 + 13, PhaseInfo{CycleDay: 14, Phase: PhaseOvulatory}},
		{"future start date", -3, PhaseInfo{CycleDay: 26, Phase: PhaseLuteal}},
		{"far future start date", -57, PhaseInfo{CycleDay: 28, Phase: PhaseLuteal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today := start.AddDate(0, 0, tt.offset)
			assert.Equal(t, tt.want, ResolvePhase(profile, today))
		})
	}
}

func TestResolvePhase_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.March, 1, 23, 30, 0, 0, time.UTC)
	profile := &CycleProfile{StartDate: start, CycleLengthDays: 28}

	today := time.Date(2024, time.March, 2, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, PhaseInfo{CycleDay: 2, Phase: PhaseMenstrual}, ResolvePhase(profile, today))
}

func TestResolvePhase_Defaults(t *testing.T) {
	today := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	want := PhaseInfo{CycleDay: 1, Phase: PhaseFollicular}

	assert.Equal(t, want, ResolvePhase(nil, today))
	assert.Equal(t, want, ResolvePhase(&CycleProfile{CycleLengthDays: 28}, today))
}

func TestResolvePhase_NonPositiveLengthFallsBack(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	profile := &CycleProfile{StartDate: start}

	got := ResolvePhase(profile, start.AddDate(0, 0, 28))
	assert.Equal(t, PhaseInfo{CycleDay: 1, Phase: PhaseMenstrual}, got)
}

func TestNormMod(t *testing.T) {
	assert.Equal(t, 0, normMod(0, 28))
	assert.Equal(t, 27, normMod(-1, 28))
	assert.Equal(t, 0, normMod(-28, 28))
	assert.Equal(t, 5, normMod(33, 28))
}

func TestDaysBetween_AcrossLocations(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	a := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.October, 3, 23, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestParseEnums(t *testing.T) {
	p, err := ParsePhase("ovulatory")
	assert.NoError(t, err)
	assert.Equal(t, PhaseOvulatory, p)

	e, err := ParseEnergy(" HIGH ")
	assert.NoError(t, err)
	assert.Equal(t, EnergyHigh, e)

	b, err := ParseBrainState("foggy")
	assert.NoError(t, err)
	assert.Equal(t, BrainFoggy, b)

	_, err = ParsePriority("urgent")
	assert.EqualError(t, err, `unknown priority "urgent"`)

	assert.False(t, Phase("Spring").Valid())
	assert.True(t, BrainTender.Valid())
}
