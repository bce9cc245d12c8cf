package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/settings"
)

// SettingsRepository persists the singleton competition settings row.
// The migrator seeds the row so Get never deals with an empty table.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository constructs a settings repository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

var (
	_ settings.Store    = (*SettingsRepository)(nil)
	_ settings.Provider = (*SettingsRepository)(nil)
)

// Get reads the singleton row.
func (r *SettingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	const q = `
		SELECT window_start, window_end, duration_seconds, results_release,
			quiz_enabled, vouchers_enabled, updated_at
		FROM quiz_settings
		WHERE id = 1`

	var s settings.Settings
	err := r.pool.QueryRow(ctx, q).Scan(
		&s.WindowStart, &s.WindowEnd, &s.DurationSeconds, &s.ResultsRelease,
		&s.QuizEnabled, &s.VouchersEnabled, &s.UpdatedAt,
	)
	return s, err
}

// Current satisfies the decision-time provider with a fresh read.
func (r *SettingsRepository) Current(ctx context.Context) (settings.Settings, error) {
	return r.Get(ctx)
}

// Update overwrites the singleton row and returns the stored state.
func (r *SettingsRepository) Update(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	const q = `
		UPDATE quiz_settings SET
			window_start = $1, window_end = $2, duration_seconds = $3,
			results_release = $4, quiz_enabled = $5, vouchers_enabled = $6,
			updated_at = $7
		WHERE id = 1
		RETURNING window_start, window_end, duration_seconds, results_release,
			quiz_enabled, vouchers_enabled, updated_at`

	var stored settings.Settings
	err := r.pool.QueryRow(ctx, q,
		s.WindowStart, s.WindowEnd, s.DurationSeconds, s.ResultsRelease,
		s.QuizEnabled, s.VouchersEnabled, s.UpdatedAt,
	).Scan(
		&stored.WindowStart, &stored.WindowEnd, &stored.DurationSeconds, &stored.ResultsRelease,
		&stored.QuizEnabled, &stored.VouchersEnabled, &stored.UpdatedAt,
	)
	return stored, err
}
