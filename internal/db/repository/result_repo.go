package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	"github.com/brightpath-edu/daily-quiz/internal/ranking"
)

// ResultRepository persists attempt results. The one-attempt-per-day
// invariant is the table's unique constraint on (participant_id, quiz_date);
// Insert never overwrites, it surfaces the existing row instead.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository constructs a result repository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

var (
	_ attempt.ResultStore = (*ResultRepository)(nil)
	_ ranking.Store       = (*ResultRepository)(nil)
)

const resultColumns = `
	id, participant_id, participant_name, score, total_questions, tier,
	elapsed_seconds, suspicious, quiz_date, rank, rank_computed_at, created_at`

// FindByParticipantAndDate returns the participant's result for date, or nil.
func (r *ResultRepository) FindByParticipantAndDate(ctx context.Context, participantID string, date time.Time) (*attempt.Result, error) {
	q := `
		SELECT ` + resultColumns + `
		FROM attempt_results
		WHERE participant_id = $1 AND quiz_date = $2`

	row := r.pool.QueryRow(ctx, q, participantID, date)
	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Insert writes a result row; a same-day duplicate returns the first row
// with created=false. ON CONFLICT DO NOTHING closes the race between two
// near-simultaneous submissions without ever overwriting.
func (r *ResultRepository) Insert(ctx context.Context, result attempt.Result) (attempt.Result, bool, error) {
	const q = `
		INSERT INTO attempt_results (
			id, participant_id, participant_name, score, total_questions, tier,
			elapsed_seconds, suspicious, quiz_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (participant_id, quiz_date) DO NOTHING
		RETURNING ` + resultColumns

	row := r.pool.QueryRow(ctx, q,
		result.ID, result.ParticipantID, result.ParticipantName, result.Score,
		result.TotalQuestions, result.Tier, result.ElapsedSeconds,
		result.Suspicious, result.QuizDate, result.CreatedAt,
	)
	stored, err := scanResult(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return attempt.Result{}, false, err
	}

	existing, err := r.FindByParticipantAndDate(ctx, result.ParticipantID, result.QuizDate)
	if err != nil {
		return attempt.Result{}, false, err
	}
	if existing == nil {
		return attempt.Result{}, false, fmt.Errorf("insert conflicted but no row found for %s on %s",
			result.ParticipantID, result.QuizDate.Format("2006-01-02"))
	}
	return *existing, false, nil
}

// ListByDateOrdered returns the full day sorted for rank assignment:
// score descending, then elapsed ascending (faster completion wins ties),
// then created_at for a stable order.
func (r *ResultRepository) ListByDateOrdered(ctx context.Context, date time.Time) ([]attempt.Result, error) {
	q := `
		SELECT ` + resultColumns + `
		FROM attempt_results
		WHERE quiz_date = $1
		ORDER BY score DESC, elapsed_seconds ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (attempt.Result, error) {
		return scanResult(row)
	})
}

// UpdateRanks bulk-writes computed ranks for one chunk.
func (r *ResultRepository) UpdateRanks(ctx context.Context, updates []ranking.RankUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(
			`UPDATE attempt_results SET rank = $2, rank_computed_at = $3 WHERE id = $1`,
			u.ResultID, u.Rank, u.ComputedAt,
		)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range updates {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (attempt.Result, error) {
	var result attempt.Result
	err := row.Scan(
		&result.ID, &result.ParticipantID, &result.ParticipantName,
		&result.Score, &result.TotalQuestions, &result.Tier,
		&result.ElapsedSeconds, &result.Suspicious, &result.QuizDate,
		&result.Rank, &result.RankComputedAt, &result.CreatedAt,
	)
	return result, err
}
