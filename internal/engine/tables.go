package engine

// Capacity is always clamped to this range regardless of Tables.
const (
	MinTaskCount = 1
	MaxTaskCount = 6
)

// FocusFactors scale the focus-hour estimate. Applicable factors compound.
type FocusFactors struct {
	Foggy     float64 `yaml:"foggy"`
	Wired     float64 `yaml:"wired"`
	LowEnergy float64 `yaml:"low_energy"`
	Menstrual float64 `yaml:"menstrual"`
}

// UrgencyWeights score a task by days until its deadline.
type UrgencyWeights struct {
	DueToday    int `yaml:"due_today"`
	DueTomorrow int `yaml:"due_tomorrow"`
	DueSoon     int `yaml:"due_soon"`      // within 3 days
	DueThisWeek int `yaml:"due_this_week"` // within 7 days
}

// PriorityWeights score the declared priority.
type PriorityWeights struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
	Other  int `yaml:"other"`
}

// TypeMatchWeights score how well a task type suits the day.
type TypeMatchWeights struct {
	Match      int `yaml:"match"`
	Neutral    int `yaml:"neutral"`
	AdminMatch int `yaml:"admin_match"`
	AdminMiss  int `yaml:"admin_miss"`
}

// TimeOfDayWeights are applied by the next-task selector.
type TimeOfDayWeights struct {
	MorningHigh           int `yaml:"morning_high"`
	Morning               int `yaml:"morning"`
	Afternoon             int `yaml:"afternoon"`
	EveningLight          int `yaml:"evening_light"`
	EveningHeavy          int `yaml:"evening_heavy"`
	EveningMicroTaskLimit int `yaml:"evening_micro_task_limit"`
}

// FreshnessWeights discourage repeating a task type.
type FreshnessWeights struct {
	SameAsLast int `yaml:"same_as_last"`
	PerRepeat  int `yaml:"per_repeat"`
}

// Tables holds every tunable constant used by the engine.
type Tables struct {
	BaseCapacity    int                `yaml:"base_capacity"`
	PhaseModifiers  map[Phase]int      `yaml:"phase_modifiers"`
	EnergyModifiers map[Energy]int     `yaml:"energy_modifiers"`
	BrainModifiers  map[BrainState]int `yaml:"brain_modifiers"`

	HoursPerTask float64      `yaml:"hours_per_task"`
	Focus        FocusFactors `yaml:"focus"`

	Urgency             UrgencyWeights   `yaml:"urgency"`
	Priority            PriorityWeights  `yaml:"priority"`
	TypeMatch           TypeMatchWeights `yaml:"type_match"`
	BrainBonus          int              `yaml:"brain_bonus"`
	FoggyMicroTaskLimit int              `yaml:"foggy_micro_task_limit"`

	TimeOfDay TimeOfDayWeights `yaml:"time_of_day"`
	Freshness FreshnessWeights `yaml:"freshness"`
}

// DefaultTables returns the stock scoring configuration.
func DefaultTables() Tables {
	return Tables{
		BaseCapacity: 3,
		PhaseModifiers: map[Phase]int{
			PhaseMenstrual:  -1,
			PhaseFollicular: 1,
			PhaseOvulatory:  2,
			PhaseLuteal:     0,
		},
		EnergyModifiers: map[Energy]int{
			EnergyLow:    -1,
			EnergyMedium: 0,
			EnergyHigh:   1,
		},
		BrainModifiers: map[BrainState]int{
			BrainCalm:    1,
			BrainFocused: 1,
			BrainWired:   -1,
			BrainFoggy:   -2,
			BrainTender:  -1,
		},
		HoursPerTask: 0.5,
		Focus: FocusFactors{
			Foggy:     0.6,
			Wired:     0.7,
			LowEnergy: 0.8,
			Menstrual: 0.7,
		},
		Urgency:             UrgencyWeights{DueToday: 40, DueTomorrow: 30, DueSoon: 20, DueThisWeek: 10},
		Priority:            PriorityWeights{High: 30, Medium: 15, Other: 5},
		TypeMatch:           TypeMatchWeights{Match: 20, Neutral: 10, AdminMatch: 15, AdminMiss: 5},
		BrainBonus:          10,
		FoggyMicroTaskLimit: 3,
		TimeOfDay: TimeOfDayWeights{
			MorningHigh:           20,
			Morning:               10,
			Afternoon:             5,
			EveningLight:          10,
			EveningHeavy:          -20,
			EveningMicroTaskLimit: 2,
		},
		Freshness: FreshnessWeights{SameAsLast: -15, PerRepeat: -5},
	}
}
