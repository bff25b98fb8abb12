package cycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"femwork/internal/engine"
	"femwork/internal/shared"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidProfile is returned when a cycle profile fails validation.
var ErrInvalidProfile = errors.New("invalid cycle profile")

// Period is one recorded period start.
type Period struct {
	StartDate    time.Time `json:"start_date"`
	PeriodLength int       `json:"period_length"`
}

// Repository persists cycle profiles and the period history derived from them.
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

// Validate checks the profile bounds without touching storage.
func (r *Repository) Validate(p engine.CycleProfile) error {
	if err := r.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Save replaces the user's profile. A start date not seen before is also
// appended to the period history.
func (r *Repository) Save(ctx context.Context, userID string, p engine.CycleProfile) error {
	if err := r.Validate(p); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := shared.Millis(time.Now())
	start := shared.FormatDay(p.StartDate)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cycles (user_id, start_date, cycle_length, period_length, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			start_date = excluded.start_date,
			cycle_length = excluded.cycle_length,
			period_length = excluded.period_length,
			updated_at = excluded.updated_at`,
		userID, start, p.CycleLengthDays, p.PeriodLengthDays, now)
	if err != nil {
		return fmt.Errorf("failed to save cycle profile: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO period_history (user_id, start_date, period_length, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, start_date) DO UPDATE SET period_length = excluded.period_length`,
		userID, start, p.PeriodLengthDays, now)
	if err != nil {
		return fmt.Errorf("failed to record period history: %w", err)
	}

	return tx.Commit()
}

// Get returns the user's profile, or nil when none was saved.
func (r *Repository) Get(ctx context.Context, userID string) (*engine.CycleProfile, error) {
	var (
		start string
		p     engine.CycleProfile
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT start_date, cycle_length, period_length FROM cycles WHERE user_id = ?`, userID,
	).Scan(&start, &p.CycleLengthDays, &p.PeriodLengthDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cycle profile: %w", err)
	}

	if p.StartDate, err = shared.ParseDay(start, time.UTC); err != nil {
		return nil, err
	}
	return &p, nil
}

// History lists recorded periods, oldest first.
func (r *Repository) History(ctx context.Context, userID string) ([]Period, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT start_date, period_length FROM period_history WHERE user_id = ? ORDER BY start_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period history: %w", err)
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var (
			start string
			p     Period
		)
		if err := rows.Scan(&start, &p.PeriodLength); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		if p.StartDate, err = shared.ParseDay(start, time.UTC); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
