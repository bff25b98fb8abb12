package engine

import "time"

const defaultCycleLength = 28

// ResolvePhase maps a cycle profile and a calendar day to the cycle day and
// phase. Without a profile (or start date) it returns day 1 of Follicular.
func ResolvePhase(profile *CycleProfile, today time.Time) PhaseInfo {
	if profile == nil || profile.StartDate.IsZero() {
		return PhaseInfo{CycleDay: 1, Phase: PhaseFollicular}
	}

	length := profile.CycleLengthDays
	if length <= 0 {
		length = defaultCycleLength
	}

	diff := DaysBetween(profile.StartDate, today)
	day := normMod(diff, length) + 1

	return PhaseInfo{CycleDay: day, Phase: phaseForDay(day)}
}

func phaseForDay(day int) Phase {
	switch {
	case day >= 1 && day <= 5:
		return PhaseMenstrual
	case day >= 6 && day <= 13:
		return PhaseFollicular
	case day >= 14 && day <= 16:
		return PhaseOvulatory
	default:
		return PhaseLuteal
	}
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
// Each date is read in its own location.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normMod is a modulo whose result is always in [0, n).
func normMod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
