package app

import (
	"context"
	"fmt"

	"femwork/internal/cycle"
	"femwork/internal/engine"
)

const (
	defaultCycleLength  = 28
	defaultPeriodLength = 5
)

// PhaseStatus is where the user is in their cycle today.
type PhaseStatus struct {
	engine.PhaseInfo
	Description string               `json:"description"`
	Profile     *engine.CycleProfile `json:"profile,omitempty"`
}

// SetCycle stores the cycle profile, filling default lengths, and returns
// the phase it puts today in.
func (a *App) SetCycle(ctx context.Context, userID string, p engine.CycleProfile) (*PhaseStatus, error) {
	if p.CycleLengthDays == 0 {
		p.CycleLengthDays = defaultCycleLength
	}
	if p.PeriodLengthDays == 0 {
		p.PeriodLengthDays = defaultPeriodLength
	}
	if err := a.cycles.Save(ctx, userID, p); err != nil {
		return nil, err
	}
	a.logger.Info("cycle profile saved")
	return a.CurrentPhase(ctx, userID)
}

// CurrentPhase resolves today's phase. Users without a profile get the
// neutral default.
func (a *App) CurrentPhase(ctx context.Context, userID string) (*PhaseStatus, error) {
	profile, err := a.cycles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle profile: %w", err)
	}
	now, _ := a.today()
	info := engine.ResolvePhase(profile, now)
	return &PhaseStatus{
		PhaseInfo:   info,
		Description: info.Phase.Description(),
		Profile:     profile,
	}, nil
}

// Patterns analyses the period history. It is nil until two periods are known.
func (a *App) Patterns(ctx context.Context, userID string) (*cycle.Patterns, error) {
	history, err := a.cycles.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cycle.AnalysePatterns(history), nil
}
