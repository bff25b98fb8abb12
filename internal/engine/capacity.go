package engine

import "math"

// Tier buckets the daily task count into a recommendation.
type Tier int

const (
	TierOneTask Tier = iota + 1
	TierTwoTask
	TierQualityOverQuantity
	TierPaceYourself
	TierGreatCapacity
)

func (t Tier) String() string {
	switch t {
	case TierOneTask:
		return "one-task day"
	case TierTwoTask:
		return "two-task day"
	case TierQualityOverQuantity:
		return "quality over quantity"
	case TierPaceYourself:
		return "good energy, pace yourself"
	case TierGreatCapacity:
		return "great capacity, take breaks"
	}
	return "unknown"
}

// Message is the sentence shown to the user for the tier.
func (t Tier) Message() string {
	switch t {
	case TierOneTask:
		return "Today is a one-task day. That's perfect. Choose your most important thing and that's enough."
	case TierTwoTask:
		return "Two tasks is realistic today. Pick your priorities and let everything else wait."
	case TierQualityOverQuantity:
		return "You can handle 2-3 focused tasks today. Quality over quantity."
	case TierPaceYourself:
		return "Good energy today! 3-4 tasks is achievable. Pace yourself."
	case TierGreatCapacity:
		return "Great capacity today! You can tackle 4-5 tasks. Remember to take breaks."
	}
	return ""
}

// MarshalText encodes the tier as its slug.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TierFor selects the tier for a task count.
func TierFor(taskCount int) Tier {
	switch {
	case taskCount <= 1:
		return TierOneTask
	case taskCount == 2:
		return TierTwoTask
	case taskCount == 3:
		return TierQualityOverQuantity
	case taskCount == 4:
		return TierPaceYourself
	default:
		return TierGreatCapacity
	}
}

// Capacity computes how many tasks are realistic for the check-in.
// Values missing from the tables contribute nothing.
func (e *Engine) Capacity(c CheckInContext) CapacityResult {
	t := e.tables
	count := t.BaseCapacity +
		t.PhaseModifiers[c.Phase] +
		t.EnergyModifiers[c.Energy] +
		t.BrainModifiers[c.BrainState]
	count = clamp(count, MinTaskCount, MaxTaskCount)

	return CapacityResult{
		TaskCount:  count,
		FocusHours: e.focusHours(count, c),
		Tier:       TierFor(count),
	}
}

func (e *Engine) focusHours(taskCount int, c CheckInContext) float64 {
	f := e.tables.Focus
	hours := float64(taskCount) * e.tables.HoursPerTask

	if c.BrainState == BrainFoggy {
		hours *= f.Foggy
	}
	if c.BrainState == BrainWired {
		hours *= f.Wired
	}
	if c.Energy == EnergyLow {
		hours *= f.LowEnergy
	}
	if c.Phase == PhaseMenstrual {
		hours *= f.Menstrual
	}

	return math.Max(0, roundHalf(hours))
}

// roundHalf rounds to the nearest 0.5.
func roundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
