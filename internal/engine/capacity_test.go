package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapacity_AlwaysWithinBounds(t *testing.T) {
	e := Default()
	phases := append(append([]Phase{}, Phases...), Phase("Unknown"))
	energies := append(append([]Energy{}, Energies...), Energy(""))
	brains := append(append([]BrainState{}, BrainStates...), BrainState("Sleepy"))

	for _, p := range phases {
		for _, en := range energies {
			for _, b := range brains {
				c := CheckInContext{Phase: p, Energy: en, BrainState: b}
				got := e.Capacity(c)
				assert.GreaterOrEqual(t, got.TaskCount, MinTaskCount, "%+v", c)
				assert.LessOrEqual(t, got.TaskCount, MaxTaskCount, "%+v", c)
				assert.GreaterOrEqual(t, got.FocusHours, 0.0, "%+v", c)
				assert.Equal(t, got, e.Capacity(c), "capacity must be deterministic")
			}
		}
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		name string
		in   CheckInContext
		want CapacityResult
	}{
		{
			name: "ceiling reached",
			in:   CheckInContext{PhaseFollicular, EnergyHigh, BrainFocused},
			want: CapacityResult{TaskCount: 6, FocusHours: 3.0, Tier: TierGreatCapacity},
		},
		{
			name: "floor reached",
			in:   CheckInContext{PhaseMenstrual, EnergyLow, BrainFoggy},
			want: CapacityResult{TaskCount: 1, FocusHours: 0, Tier: TierOneTask},
		},
		{
			name: "wired luteal",
			in:   CheckInContext{PhaseLuteal, EnergyMedium, BrainWired},
			want: CapacityResult{TaskCount: 2, FocusHours: 0.5, Tier: TierTwoTask},
		},
		{
			name: "low energy calm",
			in:   CheckInContext{PhaseLuteal, EnergyLow, BrainCalm},
			want: CapacityResult{TaskCount: 3, FocusHours: 1.0, Tier: TierQualityOverQuantity},
		},
		{
			name: "steady luteal",
			in:   CheckInContext{PhaseLuteal, EnergyMedium, BrainCalm},
			want: CapacityResult{TaskCount: 4, FocusHours: 2.0, Tier: TierPaceYourself},
		},
		{
			name: "unknown values are neutral",
			in:   CheckInContext{Phase("Spring"), Energy("?"), BrainState("")},
			want: CapacityResult{TaskCount: 3, FocusHours: 1.5, Tier: TierQualityOverQuantity},
		},
	}

	e := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Capacity(tt.in))
		})
	}
}

func TestCapacity_ClampsInjectedTables(t *testing.T) {
	tables := DefaultTables()
	tables.BaseCapacity = 40
	assert.Equal(t, MaxTaskCount, New(tables, nil).Capacity(CheckInContext{}).TaskCount)

	tables.BaseCapacity = -40
	tables.HoursPerTask = -1
	got := New(tables, nil).Capacity(CheckInContext{})
	assert.Equal(t, MinTaskCount, got.TaskCount)
	assert.Equal(t, 0.0, got.FocusHours)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierOneTask, TierFor(1))
	assert.Equal(t, TierTwoTask, TierFor(2))
	assert.Equal(t, TierQualityOverQuantity, TierFor(3))
	assert.Equal(t, TierPaceYourself, TierFor(4))
	assert.Equal(t, TierGreatCapacity, TierFor(5))
	assert.Equal(t, TierGreatCapacity, TierFor(6))

	assert.Equal(t, "great capacity, take breaks", TierGreatCapacity.String())
	assert.Contains(t, TierOneTask.Message(), "one-task day")
}

func TestIsImpossibleDay(t *testing.T) {
	assert.True(t, IsImpossibleDay(CheckInContext{PhaseMenstrual, EnergyLow, BrainFoggy}))
	assert.True(t, IsImpossibleDay(CheckInContext{PhaseOvulatory, EnergyLow, BrainTender}))
	assert.False(t, IsImpossibleDay(CheckInContext{PhaseOvulatory, EnergyHigh, BrainFocused}))
	assert.False(t, IsImpossibleDay(CheckInContext{PhaseLuteal, EnergyLow, BrainFoggy}))
	assert.False(t, IsImpossibleDay(CheckInContext{PhaseMenstrual, EnergyMedium, BrainFoggy}))

	c := CheckInContext{PhaseMenstrual, EnergyLow, BrainFoggy}
	for i := 0; i < 3; i++ {
		assert.True(t, IsImpossibleDay(c))
	}
}

func TestBareMinimumTasks(t *testing.T) {
	tasks := BareMinimumTasks()
	assert.Len(t, tasks, 3)
	tasks[0].Name = "changed"
	assert.Equal(t, "Drink a glass of water", BareMinimumTasks()[0].Name)
}
