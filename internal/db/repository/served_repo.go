package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
)

// ServedSetRepository pins the authoritative question set issued to each
// participant per quiz date. First write of the day wins; a repeat serve
// reads the original back so the answer key never moves under an attempt.
type ServedSetRepository struct {
	pool *pgxpool.Pool
}

// NewServedSetRepository constructs a served-set repository.
func NewServedSetRepository(pool *pgxpool.Pool) *ServedSetRepository {
	return &ServedSetRepository{pool: pool}
}

var _ attempt.ServedSetStore = (*ServedSetRepository)(nil)

// Save pins the set; created=false means an earlier serve already pinned one
// and that original is returned.
func (r *ServedSetRepository) Save(ctx context.Context, set attempt.ServedSet) (attempt.ServedSet, bool, error) {
	payload, err := json.Marshal(set.Questions)
	if err != nil {
		return attempt.ServedSet{}, false, fmt.Errorf("encode served set: %w", err)
	}

	const q = `
		INSERT INTO served_sets (participant_id, quiz_date, tier, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_id, quiz_date) DO NOTHING
		RETURNING participant_id, quiz_date, tier, payload, created_at`

	row := r.pool.QueryRow(ctx, q, set.ParticipantID, set.QuizDate, set.Tier, payload, set.CreatedAt)
	stored, err := scanServedSet(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attempt.ServedSet{}, false, err
	}

	existing, err := r.Get(ctx, set.ParticipantID, set.QuizDate)
	if err != nil {
		return attempt.ServedSet{}, false, err
	}
	if existing == nil {
		return attempt.ServedSet{}, false, fmt.Errorf("served set conflicted but no row found for %s on %s",
			set.ParticipantID, set.QuizDate.Format("2006-01-02"))
	}
	return *existing, false, nil
}

// Get returns the pinned set for (participant, date), or nil.
func (r *ServedSetRepository) Get(ctx context.Context, participantID string, date time.Time) (*attempt.ServedSet, error) {
	const q = `
		SELECT participant_id, quiz_date, tier, payload, created_at
		FROM served_sets
		WHERE participant_id = $1 AND quiz_date = $2`

	row := r.pool.QueryRow(ctx, q, participantID, date)
	set, err := scanServedSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func scanServedSet(row rowScanner) (attempt.ServedSet, error) {
	var set attempt.ServedSet
	var payload []byte
	if err := row.Scan(&set.ParticipantID, &set.QuizDate, &set.Tier, &payload, &set.CreatedAt); err != nil {
		return attempt.ServedSet{}, err
	}
	if err := json.Unmarshal(payload, &set.Questions); err != nil {
		return attempt.ServedSet{}, fmt.Errorf("decode served set: %w", err)
	}
	return set, nil
}
