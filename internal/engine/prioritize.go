package engine

import "sort"

// Prioritize drops completed tasks, scores the rest, and returns at most
// capacity.TaskCount of them, best first. Ties keep input order.
func (e *Engine) Prioritize(tasks []TaskCandidate, c CheckInContext, capacity CapacityResult) []ScoredTask {
	scored := make([]ScoredTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		scored = append(scored, ScoredTask{TaskCandidate: t, PriorityScore: e.ScoreTask(t, c)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})

	limit := max(capacity.TaskCount, 0)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
