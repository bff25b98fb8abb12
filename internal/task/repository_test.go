package task

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"femwork/internal/database"
	"femwork/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	due := time.Date(2024, time.October, 5, 17, 30, 0, 0, time.FixedZone("CET", 3600))

	created, err := repo.Create(ctx, "u1", NewTask{
		Name:       "  Write newsletter ",
		Priority:   engine.PriorityHigh,
		DueDate:    &due,
		MicroTasks: []string{"Outline", " ", "Draft intro"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Write newsletter", created.Name)

	got, err := repo.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, time.Date(2024, time.October, 5, 0, 0, 0, 0, time.UTC), *got.DueDate)
	assert.Equal(t, []engine.MicroTask{{Text: "Outline"}, {Text: "Draft intro"}}, got.MicroTasks)
	assert.False(t, got.Completed)

	_, err = repo.Get(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CreateValidates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "u1", NewTask{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = repo.Create(ctx, "u1", NewTask{Name: "Call bank", Priority: "Urgent"})
	assert.ErrorIs(t, err, ErrInvalid)

	created, err := repo.Create(ctx, "u1", NewTask{Name: "Call bank"})
	require.NoError(t, err)
	assert.Equal(t, engine.PriorityMedium, created.Priority)
	assert.Nil(t, created.DueDate)
}

func TestRepository_CompleteAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "u1", NewTask{Name: "Call bank"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, "u1", NewTask{Name: "Tidy desk"})
	require.NoError(t, err)
	c, err := repo.Create(ctx, "u1", NewTask{Name: "Walk"})
	require.NoError(t, err)

	at := time.Date(2024, time.October, 3, 10, 0, 0, 0, time.UTC)
	_, err = repo.Complete(ctx, "u1", c.ID, at)
	require.NoError(t, err)
	done, err := repo.Complete(ctx, "u1", a.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, at.Add(time.Hour).Equal(*done.CompletedAt))

	again, err := repo.Complete(ctx, "u1", a.ID, at.Add(5*time.Hour))
	require.NoError(t, err)
	assert.True(t, at.Add(time.Hour).Equal(*again.CompletedAt), "first completion time is kept")

	_, err = repo.Complete(ctx, "u1", "missing", at)
	assert.ErrorIs(t, err, ErrNotFound)

	open, err := repo.ListOpen(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b.ID, open[0].ID)

	all, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := repo.CompletedBetween(ctx, "u1", at, at.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, c.ID, completed[0].ID)
	assert.Equal(t, a.ID, completed[1].ID)

	none, err := repo.CompletedBetween(ctx, "u1", at.Add(-48*time.Hour), at)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_MicroTasks(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "u1", NewTask{Name: "Launch page", MicroTasks: []string{"old"}})
	require.NoError(t, err)

	updated, err := repo.ReplaceMicroTasks(ctx, "u1", created.ID, []string{"Pick a template", "Write copy", "Publish"})
	require.NoError(t, err)
	require.Len(t, updated.MicroTasks, 3)
	assert.Equal(t, "Pick a template", updated.MicroTasks[0].Text)

	updated, err = repo.CompleteMicroTask(ctx, "u1", created.ID, 1)
	require.NoError(t, err)
	assert.False(t, updated.MicroTasks[0].Completed)
	assert.True(t, updated.MicroTasks[1].Completed)
	assert.False(t, updated.StepsDone())

	_, err = repo.CompleteMicroTask(ctx, "u1", created.ID, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ReplaceMicroTasks(ctx, "u2", created.ID, []string{"x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTask_Candidate(t *testing.T) {
	today := time.Date(2024, time.October, 3, 21, 0, 0, 0, time.UTC)
	due := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name string
		due  *time.Time
		want *int
	}{
		{"no due date", nil, nil},
		{"due today", due(2024, time.October, 3), engine.DueIn(0)},
		{"due tomorrow", due(2024, time.October, 4), engine.DueIn(1)},
		{"overdue", due(2024, time.September, 30), engine.DueIn(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{ID: "x", Name: "Call", Priority: engine.PriorityLow, DueDate: tt.due,
				MicroTasks: []engine.MicroTask{{Text: "a"}, {Text: "b", Completed: true}}}
			got := task.Candidate(today)
			assert.Equal(t, tt.want, got.DaysUntilDue)
			assert.Equal(t, 2, got.MicroTaskCount)
			assert.Equal(t, "Call", got.Name)
		})
	}

	assert.True(t, Task{}.StepsDone())
	assert.Len(t, Candidates([]Task{{ID: "a"}, {ID: "b"}}, today), 2)
}
