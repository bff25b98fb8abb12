package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"femwork/internal/database"
	"femwork/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db.SQL)
	s.now = func() time.Time { return now }
	return s
}

func TestStore_DailyUsage(t *testing.T) {
	now := time.Date(2024, time.October, 3, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "insight", PromptTokens: 100, CompletionTokens: 20, Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "breakdown", PromptTokens: 50, CompletionTokens: 30, Timestamp: now.Add(-2 * time.Hour)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "insight", PromptTokens: 10, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -1)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "insight", PromptTokens: 999, Timestamp: now.AddDate(0, 0, -30)}))

	usage, err := s.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, DailyUsage{Date: "2024-10-03", TotalPrompt: 150, TotalCompletion: 50, TotalExecution: 2}, usage[0])
	assert.Equal(t, DailyUsage{Date: "2024-10-02", TotalPrompt: 10, TotalCompletion: 1, TotalExecution: 1}, usage[1])
}

func TestStore_RecordMetaSkipsEmptyUsage(t *testing.T) {
	now := time.Date(2024, time.October, 3, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)
	ctx := context.Background()

	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{AgentName: "insight", Fallback: true}))
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "breakdown",
		Usage:     shared.TokenUsage{PromptTokens: 12, CompletionTokens: 8, Model: "llama"},
		Latency:   250 * time.Millisecond,
	}))

	usage, err := s.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 1, usage[0].TotalExecution)
	assert.Equal(t, 12, usage[0].TotalPrompt)
}

func TestStore_Cleanup(t *testing.T) {
	now := time.Date(2024, time.October, 3, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "a", PromptTokens: 1, Timestamp: now.AddDate(0, 0, -40)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "b", PromptTokens: 1, Timestamp: now.AddDate(0, 0, -35)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "c", PromptTokens: 1, Timestamp: now}))

	removed, err := s.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = s.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("insight", shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "gemini"}, 1500*time.Millisecond)
	assert.Equal(t, ExecutionMetric{AgentName: "insight", Model: "gemini", PromptTokens: 3, CompletionTokens: 4, LatencyMS: 1500}, m)
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.db"), make([]byte, 2048), 0o644))

	h := Snapshot(dir, time.Now().Add(-time.Minute))
	assert.Equal(t, "2.0 KiB", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
	assert.GreaterOrEqual(t, h.Uptime, time.Minute)
}
