package telegram

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"femwork/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "sessions.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db.SQL)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := newTestSessions(t)
	ctx := context.Background()
	data := SessionContextData{Day: "2024-10-02", ChatID: 42}

	id, err := repo.Create(ctx, "7", SessionMood, "awaiting", data, 10*time.Minute)
	require.NoError(t, err)

	s, err := repo.GetActive(ctx, "7", time.Now())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, SessionMood, s.SessionType)
	got, err := s.GetContextData()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	s, err = repo.GetActive(ctx, "7", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, s, "expired sessions are not active")

	require.NoError(t, repo.Delete(ctx, id))
	s, err = repo.GetActive(ctx, "7", time.Now())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSessionRepository_CreateReplaces(t *testing.T) {
	repo := newTestSessions(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "7", SessionMood, "first", SessionContextData{}, time.Minute)
	require.NoError(t, err)
	second, err := repo.Create(ctx, "7", SessionMood, "second", SessionContextData{}, time.Minute)
	require.NoError(t, err)

	s, err := repo.GetActive(ctx, "7", time.Now())
	require.NoError(t, err)
	assert.Equal(t, second, s.ID)
	assert.Equal(t, "second", s.State)
}

func TestSessionRepository_CleanupExpired(t *testing.T) {
	repo := newTestSessions(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "1", SessionMood, "old", SessionContextData{}, -time.Minute)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "2", SessionMood, "fresh", SessionContextData{}, time.Hour)
	require.NoError(t, err)

	n, err := repo.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	s, err := repo.GetActive(ctx, "2", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, s)
}
