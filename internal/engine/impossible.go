package engine

// IsImpossibleDay reports whether the check-in calls for a rest day.
func IsImpossibleDay(c CheckInContext) bool {
	if c.Phase == PhaseMenstrual && c.Energy == EnergyLow && c.BrainState == BrainFoggy {
		return true
	}
	return c.Energy == EnergyLow && c.BrainState == BrainTender
}

// BareMinimumTasks is the fixed list offered instead of work on a rest day.
func BareMinimumTasks() []TaskCandidate {
	return []TaskCandidate{
		{ID: "water", Name: "Drink a glass of water", Priority: PriorityLow},
		{ID: "breathe", Name: "Take 3 deep breaths", Priority: PriorityLow},
		{ID: "rest", Name: "Rest without guilt", Priority: PriorityLow},
	}
}
