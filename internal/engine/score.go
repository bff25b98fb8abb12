package engine

// ScoreTask scores one task against the check-in. Scores only compare
// meaningfully within a single ranking call.
func (e *Engine) ScoreTask(t TaskCandidate, c CheckInContext) int {
	taskType := e.classifier.Classify(t.Name)

	return e.urgencyScore(t.DaysUntilDue) +
		e.priorityScore(t.Priority) +
		e.typeMatchScore(taskType, c) +
		e.brainBonus(t, taskType, c)
}

func (e *Engine) urgencyScore(daysUntilDue *int) int {
	if daysUntilDue == nil {
		return 0
	}
	w := e.tables.Urgency
	switch d := *daysUntilDue; {
	case d <= 0:
		return w.DueToday
	case d == 1:
		return w.DueTomorrow
	case d <= 3:
		return w.DueSoon
	case d <= 7:
		return w.DueThisWeek
	}
	return 0
}

func (e *Engine) priorityScore(p Priority) int {
	w := e.tables.Priority
	switch p {
	case PriorityHigh:
		return w.High
	case PriorityMedium:
		return w.Medium
	}
	return w.Other
}

func (e *Engine) typeMatchScore(taskType TaskType, c CheckInContext) int {
	w := e.tables.TypeMatch
	pick := func(match bool) int {
		if match {
			return w.Match
		}
		return w.Neutral
	}

	switch taskType {
	case TypeCommunication:
		return pick(c.Energy == EnergyHigh)
	case TypeCreative:
		return pick(c.Phase == PhaseFollicular || c.Phase == PhaseOvulatory)
	case TypeDetail:
		return pick(c.Phase == PhaseLuteal)
	case TypeAdmin:
		if c.BrainState == BrainCalm || c.BrainState == BrainFocused {
			return w.AdminMatch
		}
		return w.AdminMiss
	}
	return w.Neutral
}

func (e *Engine) brainBonus(t TaskCandidate, taskType TaskType, c CheckInContext) int {
	bonus := 0
	if c.BrainState == BrainFoggy && t.MicroTaskCount <= e.tables.FoggyMicroTaskLimit {
		bonus += e.tables.BrainBonus
	}
	if c.BrainState == BrainWired && taskType == TypePhysical {
		bonus += e.tables.BrainBonus
	}
	if c.BrainState == BrainCalm && taskType == TypeDetail {
		bonus += e.tables.BrainBonus
	}
	return bonus
}
