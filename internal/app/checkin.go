package app

import (
	"context"
	"fmt"
	"strings"

	"femwork/internal/checkin"
	"femwork/internal/engine"

	"go.uber.org/zap"
)

// CheckInInput is what the user reports at check-in.
type CheckInInput struct {
	Energy     engine.Energy     `json:"energy"`
	BrainState engine.BrainState `json:"brain_state"`
	Mood       string            `json:"mood,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

// CheckInResult is the stored check-in and what it means for today.
type CheckInResult struct {
	Record     checkin.Record        `json:"check_in"`
	Capacity   engine.CapacityResult `json:"capacity"`
	Impossible bool                  `json:"impossible"`
}

// CheckIn records today's check-in, replacing an earlier one from today.
func (a *App) CheckIn(ctx context.Context, userID string, in CheckInInput) (*CheckInResult, error) {
	phase, err := a.CurrentPhase(ctx, userID)
	if err != nil {
		return nil, err
	}
	now, day := a.today()

	rec := checkin.Record{
		UserID:     userID,
		Day:        day,
		CycleDay:   phase.CycleDay,
		Phase:      phase.Phase,
		Energy:     in.Energy,
		BrainState: in.BrainState,
		Mood:       strings.TrimSpace(in.Mood),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
	}
	if err := a.checkIns.Save(ctx, rec); err != nil {
		return nil, err
	}

	c := rec.Context()
	res := &CheckInResult{
		Record:     rec,
		Capacity:   a.engine.Capacity(c),
		Impossible: engine.IsImpossibleDay(c),
	}
	a.logger.Info("check-in recorded",
		zap.String("day", day),
		zap.String("phase", string(rec.Phase)),
		zap.Int("capacity", res.Capacity.TaskCount))
	return res, nil
}

// SetMood adds a mood word to today's check-in.
func (a *App) SetMood(ctx context.Context, userID, mood string) error {
	_, day := a.today()
	rec, err := a.checkIns.Get(ctx, userID, day)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoCheckIn
	}
	if err := a.checkIns.SetMood(ctx, userID, day, strings.TrimSpace(mood)); err != nil {
		return fmt.Errorf("failed to save mood: %w", err)
	}
	return nil
}

// TodayCheckIn returns today's check-in or ErrNoCheckIn.
func (a *App) TodayCheckIn(ctx context.Context, userID string) (*checkin.Record, error) {
	_, day := a.today()
	rec, err := a.checkIns.Get(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoCheckIn
	}
	return rec, nil
}
