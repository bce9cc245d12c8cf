package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
)

// ParticipantRepository reads enrollments and records activity touches.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository constructs a participant repository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

var _ attempt.ParticipantStore = (*ParticipantRepository)(nil)

// Find fetches a participant by canonical (lowercased) identifier.
func (r *ParticipantRepository) Find(ctx context.Context, participantID string) (*attempt.Participant, error) {
	const q = `
		SELECT id, display_name, tier, school, COALESCE(last_active_at, 'epoch'::timestamptz)
		FROM participants
		WHERE id = lower($1)`

	var p attempt.Participant
	err := r.pool.QueryRow(ctx, q, participantID).Scan(&p.ID, &p.DisplayName, &p.Tier, &p.School, &p.LastActiveAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TouchLastActive records question-fetch activity; best-effort by contract.
func (r *ParticipantRepository) TouchLastActive(ctx context.Context, participantID string, at time.Time) error {
	const q = `UPDATE participants SET last_active_at = $2 WHERE id = lower($1)`
	_, err := r.pool.Exec(ctx, q, participantID, at)
	return err
}
