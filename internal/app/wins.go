package app

import (
	"context"
	"time"

	"femwork/internal/celebrate"
	"femwork/internal/shared"
)

// streakWindowDays bounds how far back check-ins are read for streaks.
const streakWindowDays = 365

// WinsReport is the weekly summary plus check-in streaks.
type WinsReport struct {
	celebrate.Wins
	Streak        celebrate.Streaks `json:"streak"`
	Encouragement string            `json:"encouragement"`
}

// WeeklyWins summarises the last seven days.
func (a *App) WeeklyWins(ctx context.Context, userID string) (*WinsReport, error) {
	now, _ := a.today()

	completed, err := a.tasks.CompletedBetween(ctx, userID, now.AddDate(0, 0, -7), now.Add(time.Millisecond))
	if err != nil {
		return nil, err
	}
	var completedAt []time.Time
	for _, t := range completed {
		if t.CompletedAt != nil {
			completedAt = append(completedAt, *t.CompletedAt)
		}
	}

	records, err := a.checkIns.ListSince(ctx, userID, shared.FormatDay(now.AddDate(0, 0, -streakWindowDays)))
	if err != nil {
		return nil, err
	}
	var (
		days     []time.Time
		energies []celebrate.DayEnergy
	)
	for _, r := range records {
		d, err := shared.ParseDay(r.Day, a.loc)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
		energies = append(energies, celebrate.DayEnergy{Day: d, Energy: r.Energy})
	}

	return &WinsReport{
		Wins:          celebrate.WeeklyWins(completedAt, energies, now),
		Streak:        celebrate.Streak(days, now),
		Encouragement: celebrate.Encouragement(a.rnd),
	}, nil
}
