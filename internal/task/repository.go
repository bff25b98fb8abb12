package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"femwork/internal/engine"
	"femwork/internal/shared"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, name, priority, due_date, completed, completed_at, created_at`

// Repository is a database-backed repository for tasks.
type Repository struct {
	db       *sql.DB
	validate *validator.Validate
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:       db,
		validate: validator.New(),
	}
}

// Create validates and stores a new task with a generated ID.
func (r *Repository) Create(ctx context.Context, userID string, in NewTask) (*Task, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Priority == "" {
		in.Priority = engine.PriorityMedium
	}

	t := Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Priority:  in.Priority,
		CreatedAt: time.Now().UTC(),
	}
	var due any
	if in.DueDate != nil {
		d := civilUTC(*in.DueDate)
		t.DueDate = &d
		due = shared.FormatDay(d)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, name, priority, due_date, completed, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		t.ID, t.UserID, t.Name, string(t.Priority), due, shared.Millis(t.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	if t.MicroTasks, err = insertSteps(ctx, tx, t.ID, in.MicroTasks); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task: %w", err)
	}
	return &t, nil
}

// Get retrieves a task with its micro-tasks.
func (r *Repository) Get(ctx context.Context, userID, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	steps, err := r.loadSteps(ctx, userID, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.MicroTasks = steps[t.ID]
	return t, nil
}

// ListOpen returns incomplete tasks in creation order.
func (r *Repository) ListOpen(ctx context.Context, userID string) ([]Task, error) {
	return r.query(ctx, userID,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND completed = 0 ORDER BY created_at, rowid`, userID)
}

// List returns every task in creation order.
func (r *Repository) List(ctx context.Context, userID string) ([]Task, error) {
	return r.query(ctx, userID,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, rowid`, userID)
}

// CompletedBetween returns tasks completed in [from, to), ordered by
// completion time.
func (r *Repository) CompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]Task, error) {
	return r.query(ctx, userID, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND completed = 1 AND completed_at >= ? AND completed_at < ?
		ORDER BY completed_at, rowid`,
		userID, shared.Millis(from), shared.Millis(to))
}

// Complete marks the task done at the given time. Completing a completed
// task keeps its original completion time.
func (r *Repository) Complete(ctx context.Context, userID, id string, at time.Time) (*Task, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET completed = 1, completed_at = COALESCE(completed_at, ?)
		WHERE user_id = ? AND id = ?`,
		shared.Millis(at), userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

// ReplaceMicroTasks swaps the task's steps for new ones, all incomplete.
func (r *Repository) ReplaceMicroTasks(ctx context.Context, userID, id string, steps []string) (*Task, error) {
	if len(steps) > MaxMicroTasks {
		steps = steps[:MaxMicroTasks]
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE user_id = ? AND id = ?`, userID, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM micro_tasks WHERE task_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to clear micro-tasks: %w", err)
	}
	if _, err := insertSteps(ctx, tx, id, steps); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit micro-tasks: %w", err)
	}
	return r.Get(ctx, userID, id)
}

// CompleteMicroTask marks the step at index done and returns the updated task.
func (r *Repository) CompleteMicroTask(ctx context.Context, userID, id string, index int) (*Task, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE micro_tasks SET completed = 1
		WHERE task_id = (SELECT id FROM tasks WHERE user_id = ? AND id = ?) AND position = ?`,
		userID, id, index)
	if err != nil {
		return nil, fmt.Errorf("failed to complete micro-task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: no step %d on task %s", ErrNotFound, index, id)
	}
	return r.Get(ctx, userID, id)
}

func (r *Repository) query(ctx context.Context, userID, q string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var (
		tasks []Task
		ids   []string
	)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	steps, err := r.loadSteps(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].MicroTasks = steps[tasks[i].ID]
	}
	return tasks, nil
}

func (r *Repository) loadSteps(ctx context.Context, userID string, ids []string) (map[string][]engine.MicroTask, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT m.task_id, m.text, m.completed FROM micro_tasks m
		JOIN tasks t ON t.id = m.task_id
		WHERE t.user_id = ? AND m.task_id IN (`+placeholders+`)
		ORDER BY m.task_id, m.position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load micro-tasks: %w", err)
	}
	defer rows.Close()

	steps := make(map[string][]engine.MicroTask, len(ids))
	for rows.Next() {
		var (
			taskID string
			m      engine.MicroTask
		)
		if err := rows.Scan(&taskID, &m.Text, &m.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan micro-task: %w", err)
		}
		steps[taskID] = append(steps[taskID], m)
	}
	return steps, rows.Err()
}

func insertSteps(ctx context.Context, tx *sql.Tx, taskID string, steps []string) ([]engine.MicroTask, error) {
	var out []engine.MicroTask
	for _, s := range steps {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO micro_tasks (task_id, position, text, completed) VALUES (?, ?, ?, 0)`,
			taskID, len(out), s); err != nil {
			return nil, fmt.Errorf("failed to insert micro-task: %w", err)
		}
		out = append(out, engine.MicroTask{Text: s})
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var (
		t           Task
		priority    string
		due         sql.NullString
		completedAt sql.NullInt64
		createdAt   int64
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Name, &priority, &due, &t.Completed, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	t.Priority = engine.Priority(priority)
	t.CreatedAt = shared.FromMillis(createdAt)
	if due.Valid {
		d, err := shared.ParseDay(due.String, time.UTC)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if completedAt.Valid {
		at := shared.FromMillis(completedAt.Int64)
		t.CompletedAt = &at
	}
	return &t, nil
}

// civilUTC keeps the calendar day of t and drops its clock and zone.
func civilUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
