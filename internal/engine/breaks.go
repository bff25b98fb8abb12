package engine

import "fmt"

// BreakKind identifies a kind of break.
type BreakKind string

const (
	BreakMovement BreakKind = "movement"
	BreakRest     BreakKind = "rest"
	BreakReset    BreakKind = "reset"
)

// Break is a suggested pause between tasks.
type Break struct {
	Kind       BreakKind `json:"kind"`
	Name       string    `json:"name"`
	Duration   string    `json:"duration"`
	Activities []string  `json:"activities"`
}

var breaks = map[BreakKind]Break{
	BreakMovement: {
		Kind:       BreakMovement,
		Name:       "Movement Break",
		Duration:   "5-10 mins",
		Activities: []string{"Stretch", "Walk around", "Dance to one song", "Do some jumping jacks"},
	},
	BreakRest: {
		Kind:       BreakRest,
		Name:       "Rest Break",
		Duration:   "10-15 mins",
		Activities: []string{"Lie down", "Close eyes", "Listen to calm music", "Look out window"},
	},
	BreakReset: {
		Kind:       BreakReset,
		Name:       "Quick Reset",
		Duration:   "5 mins",
		Activities: []string{"Drink water", "Splash face", "Deep breaths", "Quick tidy"},
	},
}

// BreakContext describes the moment a break is suggested for.
// LastType and NextType may be empty.
type BreakContext struct {
	CheckIn  CheckInContext
	LastType TaskType
	NextType TaskType
}

// SuggestBreak picks a break for the check-in and the task switch ahead.
func SuggestBreak(b BreakContext) Break {
	c := b.CheckIn
	switch {
	case c.Energy == EnergyLow && c.BrainState == BrainFoggy:
		return copyBreak(BreakRest)
	case c.BrainState == BrainWired:
		return copyBreak(BreakMovement)
	case b.LastType == TypeDetail && b.NextType == TypeCreative:
		return copyBreak(BreakMovement)
	case c.Phase == PhaseMenstrual:
		return copyBreak(BreakRest)
	}
	return copyBreak(BreakReset)
}

func copyBreak(kind BreakKind) Break {
	b := breaks[kind]
	b.Activities = append([]string(nil), b.Activities...)
	return b
}

// MicroTaskProgress reports where a task stands in its steps.
type MicroTaskProgress struct {
	Done      bool       `json:"done"`
	Next      *MicroTask `json:"next,omitempty"`
	NextIndex int        `json:"next_index"`
	Remaining int        `json:"remaining"`
	Progress  string     `json:"progress"`
}

// NextMicroTask returns the first incomplete step. ok is false when the task
// has no steps at all.
func NextMicroTask(steps []MicroTask) (progress MicroTaskProgress, ok bool) {
	if len(steps) == 0 {
		return MicroTaskProgress{}, false
	}

	next := -1
	remaining := 0
	for i, s := range steps {
		if s.Completed {
			continue
		}
		if next < 0 {
			next = i
		}
		remaining++
	}

	progress = MicroTaskProgress{
		NextIndex: next,
		Remaining: remaining,
		Progress:  fmt.Sprintf("%d/%d done", len(steps)-remaining, len(steps)),
	}
	if next < 0 {
		progress.Done = true
		return progress, true
	}
	step := steps[next]
	progress.Next = &step
	return progress, true
}
