package engine

import (
	"fmt"
	"strings"
	"time"
)

// Phase is a segment of the repeating cycle.
type Phase string

const (
	PhaseMenstrual  Phase = "Menstrual"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulatory  Phase = "Ovulatory"
	PhaseLuteal     Phase = "Luteal"
)

// Phases lists every phase in cycle order.
var Phases = []Phase{PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal}

// Energy is the self-reported energy level.
type Energy string

const (
	EnergyLow    Energy = "Low"
	EnergyMedium Energy = "Medium"
	EnergyHigh   Energy = "High"
)

// Energies lists the valid energy levels.
var Energies = []Energy{EnergyLow, EnergyMedium, EnergyHigh}

// BrainState is the self-reported cognitive/emotional mode.
type BrainState string

const (
	BrainCalm    BrainState = "Calm"
	BrainFocused BrainState = "Focused"
	BrainWired   BrainState = "Wired"
	BrainFoggy   BrainState = "Foggy"
	BrainTender  BrainState = "Tender"
)

// BrainStates lists the valid brain states.
var BrainStates = []BrainState{BrainCalm, BrainFocused, BrainWired, BrainFoggy, BrainTender}

// Priority is the priority a user declared for a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the valid task priorities.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// TaskType is the category a task name is classified into.
type TaskType string

const (
	TypeCommunication TaskType = "Communication"
	TypeCreative      TaskType = "Creative"
	TypeDetail        TaskType = "Detail"
	TypeAdmin         TaskType = "Admin"
	TypePhysical      TaskType = "Physical"
	TypeGeneral       TaskType = "General"
)

func (p Phase) Valid() bool      { return contains(Phases, p) }
func (e Energy) Valid() bool     { return contains(Energies, e) }
func (b BrainState) Valid() bool { return contains(BrainStates, b) }
func (p Priority) Valid() bool   { return contains(Priorities, p) }

// Description returns a one-line guidance for the phase.
func (p Phase) Description() string {
	switch p {
	case PhaseMenstrual:
		return "Rest and reflect. Your body is asking for gentleness."
	case PhaseFollicular:
		return "Rising energy. Great time for planning and creating."
	case PhaseOvulatory:
		return "Peak energy. Ideal for meetings and delivery."
	case PhaseLuteal:
		return "Focus on completion and attention to detail."
	}
	return "Listen to your body and work at a pace that feels right today."
}

// ParsePhase matches s against the known phases, ignoring case.
func ParsePhase(s string) (Phase, error) { return parse(Phases, s, "phase") }

// ParseEnergy matches s against the known energy levels, ignoring case.
func ParseEnergy(s string) (Energy, error) { return parse(Energies, s, "energy level") }

// ParseBrainState matches s against the known brain states, ignoring case.
func ParseBrainState(s string) (BrainState, error) { return parse(BrainStates, s, "brain state") }

// ParsePriority matches s against the known priorities, ignoring case.
func ParsePriority(s string) (Priority, error) { return parse(Priorities, s, "priority") }

func parse[T ~string](values []T, s, what string) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// CycleProfile describes the user's cycle. It is edited outside the engine.
type CycleProfile struct {
	StartDate        time.Time `json:"start_date" validate:"required"`
	CycleLengthDays  int       `json:"cycle_length_days" validate:"min=21,max=35"`
	PeriodLengthDays int       `json:"period_length_days" validate:"min=1,max=10"`
}

// PhaseInfo is the resolved position inside the cycle for a given day.
type PhaseInfo struct {
	CycleDay int   `json:"cycle_day"`
	Phase    Phase `json:"phase"`
}

// CheckInContext is the daily self check-in, fixed for the day it was made.
type CheckInContext struct {
	Phase      Phase      `json:"phase"`
	Energy     Energy     `json:"energy"`
	BrainState BrainState `json:"brain_state"`
}

// CapacityResult is derived from a check-in and never persisted.
type CapacityResult struct {
	TaskCount  int     `json:"task_count"`
	FocusHours float64 `json:"focus_hours"`
	Tier       Tier    `json:"tier"`
}

// TaskCandidate is the read-only view of a pending task.
// A nil DaysUntilDue means the task has no deadline.
type TaskCandidate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Priority       Priority `json:"priority"`
	DaysUntilDue   *int     `json:"days_until_due,omitempty"`
	MicroTaskCount int      `json:"micro_task_count"`
	Completed      bool     `json:"completed"`
}

// DueIn returns a pointer suitable for TaskCandidate.DaysUntilDue.
func DueIn(days int) *int { return &days }

// ScoredTask is a candidate with the score it got in one ranking call.
type ScoredTask struct {
	TaskCandidate
	PriorityScore int `json:"priority_score"`
}

// Alternative is a runner-up pick.
type Alternative struct {
	Task   TaskCandidate `json:"task"`
	Reason string        `json:"reason"`
}

// PickResult is the "do this next" recommendation.
type PickResult struct {
	Task         *TaskCandidate `json:"task"`
	Reason       string         `json:"reason"`
	Alternatives []Alternative  `json:"alternatives,omitempty"`
}

// PickContext carries the inputs of PickNext besides the ranked list.
type PickContext struct {
	CheckIn        CheckInContext
	Hour           int
	CompletedToday []TaskCandidate
}

// MicroTask is one step of a larger task.
type MicroTask struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}
