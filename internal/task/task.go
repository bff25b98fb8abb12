// Package task stores the user's to-do items and their micro-task steps.
package task

import (
	"errors"
	"time"

	"femwork/internal/engine"
)

// ErrNotFound is returned when a task does not exist for the user.
var ErrNotFound = errors.New("task not found")

// ErrInvalid is returned when a new task fails validation.
var ErrInvalid = errors.New("invalid task")

// MaxMicroTasks bounds how many steps a task can hold.
const MaxMicroTasks = 30

// Task is a stored to-do item.
type Task struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Name        string             `json:"name"`
	Priority    engine.Priority    `json:"priority"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Completed   bool               `json:"completed"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	MicroTasks  []engine.MicroTask `json:"micro_tasks,omitempty"`
}

// NewTask is the input for creating a task.
type NewTask struct {
	Name       string          `json:"name" validate:"required,max=200"`
	Priority   engine.Priority `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	MicroTasks []string        `json:"micro_tasks,omitempty" validate:"max=30,dive,required,max=200"`
}

// Candidate converts the task to the engine's view as of today. Overdue tasks
// count as due today.
func (t Task) Candidate(today time.Time) engine.TaskCandidate {
	c := engine.TaskCandidate{
		ID:             t.ID,
		Name:           t.Name,
		Priority:       t.Priority,
		MicroTaskCount: len(t.MicroTasks),
		Completed:      t.Completed,
	}
	if t.DueDate != nil {
		c.DaysUntilDue = engine.DueIn(max(engine.DaysBetween(today, *t.DueDate), 0))
	}
	return c
}

// Candidates converts a slice of tasks.
func Candidates(tasks []Task, today time.Time) []engine.TaskCandidate {
	out := make([]engine.TaskCandidate, len(tasks))
	for i, t := range tasks {
		out[i] = t.Candidate(today)
	}
	return out
}

// StepsDone reports whether every micro-task is complete. A task without
// steps has none outstanding.
func (t Task) StepsDone() bool {
	for _, m := range t.MicroTasks {
		if !m.Completed {
			return false
		}
	}
	return true
}
