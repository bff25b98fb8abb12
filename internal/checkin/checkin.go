// Package checkin stores the daily energy and brain-state check-ins that
// drive capacity and task ranking.
package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"femwork/internal/engine"
	"femwork/internal/shared"
)

// ErrInvalid is returned for check-ins with unknown energy or brain state.
var ErrInvalid = errors.New("invalid check-in")

// Record is one day's check-in. Day is YYYY-MM-DD in the user's timezone.
type Record struct {
	UserID     string            `json:"user_id"`
	Day        string            `json:"day"`
	CycleDay   int               `json:"cycle_day"`
	Phase      engine.Phase      `json:"phase"`
	Energy     engine.Energy     `json:"energy"`
	BrainState engine.BrainState `json:"brain_state"`
	Mood       string            `json:"mood,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Context is the engine view of the record.
func (r Record) Context() engine.CheckInContext {
	return engine.CheckInContext{Phase: r.Phase, Energy: r.Energy, BrainState: r.BrainState}
}

// Repository persists check-ins, one per user per day.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save stores the record, replacing any earlier check-in for the same day.
func (r *Repository) Save(ctx context.Context, rec Record) error {
	if !rec.Energy.Valid() || !rec.BrainState.Valid() || !rec.Phase.Valid() {
		return fmt.Errorf("%w: energy %q, brain state %q, phase %q", ErrInvalid, rec.Energy, rec.BrainState, rec.Phase)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO check_ins (user_id, day, cycle_day, phase, energy, brain_state, mood, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			cycle_day = excluded.cycle_day,
			phase = excluded.phase,
			energy = excluded.energy,
			brain_state = excluded.brain_state,
			mood = excluded.mood,
			notes = excluded.notes,
			created_at = excluded.created_at`,
		rec.UserID, rec.Day, rec.CycleDay, string(rec.Phase), string(rec.Energy), string(rec.BrainState),
		rec.Mood, rec.Notes, shared.Millis(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}
	return nil
}

// Get returns the check-in for the day, or nil when there is none.
func (r *Repository) Get(ctx context.Context, userID, day string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, day, cycle_day, phase, energy, brain_state, mood, notes, created_at
		FROM check_ins WHERE user_id = ? AND day = ?`, userID, day)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	return rec, nil
}

// SetMood attaches a mood word to an existing check-in.
func (r *Repository) SetMood(ctx context.Context, userID, day, mood string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE check_ins SET mood = ? WHERE user_id = ? AND day = ?`, mood, userID, day)
	if err != nil {
		return fmt.Errorf("failed to set mood: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no check-in for %s on %s", userID, day)
	}
	return nil
}

// ListSince returns check-ins on or after day, oldest first.
func (r *Repository) ListSince(ctx context.Context, userID, day string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, day, cycle_day, phase, energy, brain_state, mood, notes, created_at
		FROM check_ins WHERE user_id = ? AND day >= ? ORDER BY day ASC`, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec                       Record
		phase, energy, brainState string
		createdAt                 int64
	)
	if err := s.Scan(&rec.UserID, &rec.Day, &rec.CycleDay, &phase, &energy, &brainState,
		&rec.Mood, &rec.Notes, &createdAt); err != nil {
		return nil, err
	}
	rec.Phase = engine.Phase(phase)
	rec.Energy = engine.Energy(energy)
	rec.BrainState = engine.BrainState(brainState)
	rec.CreatedAt = shared.FromMillis(createdAt)
	return &rec, nil
}
