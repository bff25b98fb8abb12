// Package celebrate produces the small rewards shown when work gets done:
// celebration lines, check-in streaks and the weekly wins summary.
package celebrate

import (
	"fmt"
	"sort"
	"time"

	"femwork/internal/engine"
)

// Rand is the randomness celebrations draw from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

var celebrations = []string{
	"Brilliant! ✨",
	"You did it! 🎉",
	"Nice work! 💪",
	"That's done! ✅",
	"Amazing! 🌟",
	"Well done! 👏",
	"Crushing it! 🔥",
	"Yes! 🎯",
	"Beautiful! 💫",
	"Perfect! ⭐",
}

var encouragements = []string{
	"One step at a time, you're doing great",
	"Every small win counts",
	"Progress, not perfection",
	"You showed up, that's what matters",
	"Your effort is enough",
	"You're building momentum",
	"This is how change happens",
	"You're doing better than you think",
}

const (
	msgFirstOfDay   = "First one done! Momentum started! 🚀"
	msgAllStepsDone = "Full task completed! Amazing work! 🎉"
	msgHighPriority = "High priority task conquered! 💪"
	msgJustInTime   = "Just in time! Well done! ⏰"
)

// Random returns a generic celebration line.
func Random(rnd Rand) string {
	return celebrations[rnd.IntN(len(celebrations))]
}

// Encouragement returns a line for days when little got done.
func Encouragement(rnd Rand) string {
	return encouragements[rnd.IntN(len(encouragements))]
}

// Completion describes a task that was just finished.
type Completion struct {
	Priority     engine.Priority
	DaysUntilDue *int
	StepCount    int
	AllStepsDone bool
	// CompletedToday counts completions today, this one included.
	CompletedToday int
}

// ForTask picks a celebration that fits the completion, or a generic one when
// nothing about it stands out.
func ForTask(c Completion, rnd Rand) string {
	var messages []string
	if c.CompletedToday == 1 {
		messages = append(messages, msgFirstOfDay)
	}
	if c.StepCount > 0 && c.AllStepsDone {
		messages = append(messages, msgAllStepsDone)
	}
	if c.Priority == engine.PriorityHigh {
		messages = append(messages, msgHighPriority)
	}
	if c.DaysUntilDue != nil && *c.DaysUntilDue == 0 {
		messages = append(messages, msgJustInTime)
	}

	if len(messages) == 0 {
		return Random(rnd)
	}
	return messages[rnd.IntN(len(messages))]
}

// Streaks are runs of consecutive check-in days.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Streak computes the run ending today and the longest run overall. Several
// check-ins on one calendar day count once; a run not reaching today is not
// current.
func Streak(days []time.Time, today time.Time) Streaks {
	if len(days) == 0 {
		return Streaks{}
	}

	// Offsets are days before today; larger means older.
	seen := make(map[int]struct{}, len(days))
	var offsets []int
	for _, d := range days {
		off := engine.DaysBetween(d, today)
		if _, dup := seen[off]; dup {
			continue
		}
		seen[off] = struct{}{}
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	var s Streaks
	for i, off := range offsets {
		if off != i {
			break
		}
		s.Current++
	}

	run := 1
	s.Longest = 1
	for i := 1; i < len(offsets); i++ {
		if offsets[i]-offsets[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		s.Longest = max(s.Longest, run)
	}
	return s
}

// DayEnergy is the part of a check-in the weekly summary needs.
type DayEnergy struct {
	Day    time.Time
	Energy engine.Energy
}

// Wins summarises the last seven days.
type Wins struct {
	TasksCompleted int    `json:"tasks_completed"`
	DaysCheckedIn  int    `json:"days_checked_in"`
	HighEnergyDays int    `json:"high_energy_days"`
	Message        string `json:"message"`
}

// WeeklyWins counts completions and check-ins in the seven days before now.
func WeeklyWins(completed []time.Time, checkIns []DayEnergy, now time.Time) Wins {
	since := now.AddDate(0, 0, -7)

	var w Wins
	for _, at := range completed {
		if !at.Before(since) {
			w.TasksCompleted++
		}
	}
	for _, c := range checkIns {
		if c.Day.Before(since) {
			continue
		}
		w.DaysCheckedIn++
		if c.Energy == engine.EnergyHigh {
			w.HighEnergyDays++
		}
	}
	w.Message = weeklyMessage(w.TasksCompleted, w.DaysCheckedIn)
	return w
}

func weeklyMessage(tasks, checkIns int) string {
	switch {
	case tasks == 0 && checkIns == 0:
		return "This week was hard. That's okay. Tomorrow is a fresh start."
	case tasks == 0:
		return fmt.Sprintf("You checked in %d times this week. That awareness is valuable.", checkIns)
	case tasks < 5:
		return fmt.Sprintf("%d tasks done! Every single one counts.", tasks)
	case tasks < 10:
		return fmt.Sprintf("%d tasks completed! You're building great momentum.", tasks)
	}
	return fmt.Sprintf("%d tasks done! You're absolutely crushing it! 🔥", tasks)
}
