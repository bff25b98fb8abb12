package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"femwork/internal/celebrate"
	"femwork/internal/engine"
	"femwork/internal/insight"
	"femwork/internal/task"

	"go.uber.org/zap"
)

// ErrNoSteps is returned when stepping through a task without micro-tasks.
var ErrNoSteps = errors.New("task has no steps; break it down first")

// minRefLen is the shortest ID prefix accepted as a task reference.
const minRefLen = 4

// AddTask validates and stores a new task.
func (a *App) AddTask(ctx context.Context, userID string, in task.NewTask) (*task.Task, error) {
	t, err := a.tasks.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	a.logger.Info("task added", zap.String("task_id", t.ID), zap.String("priority", string(t.Priority)))
	return t, nil
}

// ListTasks returns open tasks, or every task when all is set.
func (a *App) ListTasks(ctx context.Context, userID string, all bool) ([]task.Task, error) {
	if all {
		return a.tasks.List(ctx, userID)
	}
	return a.tasks.ListOpen(ctx, userID)
}

// ResolveTask finds a task by full ID or by a unique ID prefix.
func (a *App) ResolveTask(ctx context.Context, userID, ref string) (*task.Task, error) {
	ref = strings.TrimSpace(ref)
	t, err := a.tasks.Get(ctx, userID, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, task.ErrNotFound) || len(ref) < minRefLen {
		return nil, err
	}

	all, err := a.tasks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	var match *task.Task
	for i := range all {
		if strings.HasPrefix(all[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("task reference %q is ambiguous", ref)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, task.ErrNotFound
	}
	return match, nil
}

// CompletionResult is what finishing a task earns.
type CompletionResult struct {
	Task           *task.Task `json:"task"`
	Celebration    string     `json:"celebration"`
	CompletedToday int        `json:"completed_today"`
	Goal           int        `json:"goal,omitempty"`
	Progress       string     `json:"progress"`
}

// CompleteTask marks a task done and celebrates it against today's capacity.
func (a *App) CompleteTask(ctx context.Context, userID, ref string) (*CompletionResult, error) {
	t, err := a.ResolveTask(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	now, day := a.today()

	done, err := a.tasks.Complete(ctx, userID, t.ID, now)
	if err != nil {
		return nil, err
	}

	from, to := dayBounds(now)
	completed, err := a.tasks.CompletedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	res := &CompletionResult{
		Task:           done,
		CompletedToday: len(completed),
		Celebration: celebrate.ForTask(celebrate.Completion{
			Priority:       done.Priority,
			DaysUntilDue:   t.Candidate(now).DaysUntilDue,
			StepCount:      len(done.MicroTasks),
			AllStepsDone:   done.StepsDone(),
			CompletedToday: len(completed),
		}, a.rnd),
	}

	rec, err := a.checkIns.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		res.Goal = a.engine.Capacity(rec.Context()).TaskCount
		res.Progress = fmt.Sprintf("%d of %d tasks done today", res.CompletedToday, res.Goal)
	} else {
		res.Progress = fmt.Sprintf("%d done today", res.CompletedToday)
	}

	a.logger.Info("task completed", zap.String("task_id", done.ID), zap.Int("completed_today", res.CompletedToday))
	return res, nil
}

// StepResult is the outcome of finishing one micro-task.
type StepResult struct {
	Task          *task.Task               `json:"task"`
	Step          string                   `json:"step"`
	Progress      engine.MicroTaskProgress `json:"progress"`
	TaskCompleted bool                     `json:"task_completed"`
	Completion    *CompletionResult        `json:"completion,omitempty"`
}

// CompleteStep finishes the next open micro-task. Finishing the last one
// completes the task.
func (a *App) CompleteStep(ctx context.Context, userID, ref string) (*StepResult, error) {
	t, err := a.ResolveTask(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	progress, ok := engine.NextMicroTask(t.MicroTasks)
	if !ok {
		return nil, ErrNoSteps
	}

	res := &StepResult{Task: t, Progress: progress}
	if !progress.Done {
		res.Step = progress.Next.Text
		updated, err := a.tasks.CompleteMicroTask(ctx, userID, t.ID, progress.NextIndex)
		if err != nil {
			return nil, err
		}
		res.Task = updated
		res.Progress, _ = engine.NextMicroTask(updated.MicroTasks)
	}

	if res.Progress.Done && !t.Completed {
		c, err := a.CompleteTask(ctx, userID, t.ID)
		if err != nil {
			return nil, err
		}
		res.Task = c.Task
		res.TaskCompleted = true
		res.Completion = c
	}
	return res, nil
}

// BreakdownResult is a task with freshly generated steps.
type BreakdownResult struct {
	Task   *task.Task `json:"task"`
	Source string     `json:"source"`
}

// BreakDown replaces a task's steps with ones sized for the current phase.
func (a *App) BreakDown(ctx context.Context, userID, ref string) (*BreakdownResult, error) {
	t, err := a.ResolveTask(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	phase, err := a.CurrentPhase(ctx, userID)
	if err != nil {
		return nil, err
	}

	bd, meta := a.insights.Breakdown(ctx, insight.BreakdownRequest{
		TaskName: t.Name,
		Phase:    phase.Phase,
		Priority: t.Priority,
		DueDate:  t.DueDate,
	})
	a.recordMeta(ctx, meta)

	updated, err := a.tasks.ReplaceMicroTasks(ctx, userID, t.ID, bd.Steps)
	if err != nil {
		return nil, err
	}
	return &BreakdownResult{Task: updated, Source: bd.Source}, nil
}

// ImportChecklist fetches a checklist page and stores it as one task whose
// steps are the list items.
func (a *App) ImportChecklist(ctx context.Context, userID, url string) (*task.Task, error) {
	if a.importer == nil {
		return nil, errors.New("checklist import is not configured")
	}

	list, meta, err := a.importer.Fetch(ctx, url)
	a.recordMeta(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to import checklist: %w", err)
	}

	t, err := a.tasks.Create(ctx, userID, task.NewTask{
		Name:       list.Title,
		Priority:   engine.PriorityMedium,
		MicroTasks: list.Items,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("checklist imported", zap.String("task_id", t.ID), zap.Int("steps", len(t.MicroTasks)))
	return t, nil
}
