package checkin

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

func TestRepository_SaveOverwritesSameDay(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	at := time.Date(2024, time.October, 3, 8, 0, 0, 0, time.UTC)

	first := Record{
		UserID: "u1", Day: "2024-10-03", CycleDay: 12, Phase: engine.PhaseFollicular,
		Energy: engine.EnergyLow, BrainState: engine.BrainFoggy, CreatedAt: at,
	}
	require.NoError(t, repo.Save(ctx, first))

	second := first
	second.Energy = engine.EnergyHigh
	second.BrainState = engine.BrainFocused
	second.CreatedAt = at.Add(3 * time.Hour)
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "u1", "2024-10-03")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
	assert.Equal(t, engine.CheckInContext{
		Phase: engine.PhaseFollicular, Energy: engine.EnergyHigh, BrainState: engine.BrainFocused,
	}, got.Context())
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.Get(context.Background(), "u1", "2024-10-03")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_SaveRejectsUnknownValues(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Save(context.Background(), Record{
		UserID: "u1", Day: "2024-10-03", Phase: engine.PhaseLuteal,
		Energy: "Sky-high", BrainState: engine.BrainCalm,
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRepository_SetMoodAndListSince(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, d := range []string{"2024-10-01", "2024-10-02", "2024-10-04"} {
		require.NoError(t, repo.Save(ctx, Record{
			UserID: "u1", Day: d, CycleDay: 1, Phase: engine.PhaseMenstrual,
			Energy: engine.EnergyMedium, BrainState: engine.BrainTender,
		}))
	}

	require.NoError(t, repo.SetMood(ctx, "u1", "2024-10-02", "hopeful"))
	assert.Error(t, repo.SetMood(ctx, "u1", "2024-10-03", "tired"))

	got, err := repo.ListSince(ctx, "u1", "2024-10-02")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-10-02", got[0].Day)
	assert.Equal(t, "hopeful", got[0].Mood)
	assert.Equal(t, "2024-10-04", got[1].Day)
}
