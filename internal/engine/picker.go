package engine

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ReasonNoTasks = "No tasks available. Time to rest or explore ideas!"
	ReasonAllDone = "All tasks done! You're amazing! 🎉"
	reasonDefault = "Good task to start with"

	reasonSeparator = " • "
	maxAlternatives = 2
)

// PickNext re-ranks an already prioritized list for the current moment and
// returns the best task with up to two alternatives. Tasks that are flagged
// completed or appear in CompletedToday are never returned.
func (e *Engine) PickNext(tasks []ScoredTask, p PickContext) PickResult {
	if len(tasks) == 0 {
		return PickResult{Reason: ReasonNoTasks}
	}

	type ranked struct {
		task  TaskCandidate
		score int
	}
	var candidates []ranked
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if completedToday(t.TaskCandidate, p.CompletedToday) {
			continue
		}
		candidates = append(candidates, ranked{task: t.TaskCandidate, score: e.CombinedScore(t, p)})
	}

	if len(candidates) == 0 {
		return PickResult{Reason: ReasonAllDone}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	best := candidates[0].task
	result := PickResult{
		Task:   &best,
		Reason: e.reason(best, p.CheckIn),
	}
	for _, c := range candidates[1:min(len(candidates), maxAlternatives+1)] {
		result.Alternatives = append(result.Alternatives, Alternative{
			Task:   c.task,
			Reason: e.reason(c.task, p.CheckIn),
		})
	}
	return result
}

// CombinedScore is the selector's ranking key for one task.
func (e *Engine) CombinedScore(t ScoredTask, p PickContext) int {
	return t.PriorityScore +
		e.timeOfDayScore(t.TaskCandidate, p.Hour, p.CheckIn.Phase) +
		e.freshnessScore(t.TaskCandidate, p.CompletedToday)
}

func (e *Engine) timeOfDayScore(t TaskCandidate, hour int, phase Phase) int {
	w := e.tables.TimeOfDay
	switch {
	case hour >= 6 && hour < 12:
		if phase == PhaseFollicular || phase == PhaseOvulatory {
			if t.Priority == PriorityHigh {
				return w.MorningHigh
			}
			return w.Morning
		}
	case hour >= 12 && hour < 18:
		return w.Afternoon
	case hour >= 18:
		if t.MicroTaskCount <= w.EveningMicroTaskLimit {
			return w.EveningLight
		}
		return w.EveningHeavy
	}
	return 0
}

// freshnessScore penalizes the type of the last completed task, and every
// earlier completion of the same type on top of that.
func (e *Engine) freshnessScore(t TaskCandidate, completedToday []TaskCandidate) int {
	if len(completedToday) == 0 {
		return 0
	}
	w := e.tables.Freshness
	thisType := e.classifier.Classify(t.Name)

	score := 0
	last := len(completedToday) - 1
	if e.classifier.Classify(completedToday[last].Name) == thisType {
		score += w.SameAsLast
	}
	for _, c := range completedToday[:last] {
		if e.classifier.Classify(c.Name) == thisType {
			score += w.PerRepeat
		}
	}
	return score
}

func (e *Engine) reason(t TaskCandidate, c CheckInContext) string {
	var reasons []string

	if t.DaysUntilDue != nil {
		switch *t.DaysUntilDue {
		case 0:
			reasons = append(reasons, "Due today - let's get it done")
		case 1:
			reasons = append(reasons, "Due tomorrow - good time to tackle it")
		}
	}

	if t.Priority == PriorityHigh {
		reasons = append(reasons, "High priority task")
	}

	switch {
	case t.MicroTaskCount <= 2:
		reasons = append(reasons, "Quick task (~15 mins)")
	case t.MicroTaskCount == 3:
		reasons = append(reasons, "Moderate task (~30 mins)")
	}

	taskType := e.classifier.Classify(t.Name)
	if taskType == TypeCommunication && c.Energy == EnergyHigh {
		reasons = append(reasons, "Good energy for communication")
	}
	if taskType == TypeDetail && c.BrainState == BrainCalm {
		reasons = append(reasons, "Calm mind perfect for detail work")
	}
	if taskType == TypeCreative && (c.Phase == PhaseFollicular || c.Phase == PhaseOvulatory) {
		reasons = append(reasons, fmt.Sprintf("%s phase - great for creative work", c.Phase))
	}

	if c.BrainState == BrainWired && taskType == TypeAdmin {
		reasons = append(reasons, "Channel that wired energy into admin tasks")
	}
	if c.BrainState == BrainWired && taskType == TypePhysical {
		reasons = append(reasons, "Move that wired energy through your body")
	}
	if c.BrainState == BrainFoggy && t.MicroTaskCount <= 2 {
		reasons = append(reasons, "Simple task perfect for foggy brain")
	}

	if len(reasons) == 0 {
		return reasonDefault
	}
	return strings.Join(reasons, reasonSeparator)
}

// completedToday matches by ID, or by value when a task has no ID.
func completedToday(t TaskCandidate, done []TaskCandidate) bool {
	for _, d := range done {
		if t.ID != "" || d.ID != "" {
			if t.ID == d.ID {
				return true
			}
			continue
		}
		if sameTask(t, d) {
			return true
		}
	}
	return false
}

func sameTask(a, b TaskCandidate) bool {
	if a.Name != b.Name || a.Priority != b.Priority || a.MicroTaskCount != b.MicroTaskCount {
		return false
	}
	if (a.DaysUntilDue == nil) != (b.DaysUntilDue == nil) {
		return false
	}
	return a.DaysUntilDue == nil || *a.DaysUntilDue == *b.DaysUntilDue
}
