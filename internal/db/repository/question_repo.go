package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	"github.com/brightpath-edu/daily-quiz/internal/question"
)

// QuestionRepository serves uniform random draws from the question bank.
// Randomness lives in the storage layer (ORDER BY random()) so every
// eligible candidate is equally likely at each fallback level.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository constructs a question repository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

var (
	_ question.Bank          = (*QuestionRepository)(nil)
	_ attempt.QuestionLoader = (*QuestionRepository)(nil)
)

const questionColumns = `id, prompt, options, correct_index, category, tier`

// RandomByTierAndCategory draws up to limit questions for (tier, category).
func (r *QuestionRepository) RandomByTierAndCategory(ctx context.Context, tier, category string, limit int, exclude []string) ([]question.Question, error) {
	q := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE tier = $1 AND category = $2 AND NOT (id::text = ANY($3::text[]))
		ORDER BY random()
		LIMIT $4`
	return r.query(ctx, q, tier, category, excludeParam(exclude), limit)
}

// RandomByTier draws up to limit questions for the tier across all categories.
func (r *QuestionRepository) RandomByTier(ctx context.Context, tier string, limit int, exclude []string) ([]question.Question, error) {
	q := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE tier = $1 AND NOT (id::text = ANY($2::text[]))
		ORDER BY random()
		LIMIT $3`
	return r.query(ctx, q, tier, excludeParam(exclude), limit)
}

// RandomAny draws up to limit questions from the whole bank.
func (r *QuestionRepository) RandomAny(ctx context.Context, limit int, exclude []string) ([]question.Question, error) {
	q := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE NOT (id::text = ANY($1::text[]))
		ORDER BY random()
		LIMIT $2`
	return r.query(ctx, q, excludeParam(exclude), limit)
}

// ByIDs loads question bodies for a pinned served set.
func (r *QuestionRepository) ByIDs(ctx context.Context, ids []string) ([]question.Question, error) {
	q := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id::text = ANY($1::text[])`
	return r.query(ctx, q, ids)
}

func (r *QuestionRepository) query(ctx context.Context, sql string, args ...any) ([]question.Question, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (question.Question, error) {
		var q question.Question
		err := row.Scan(&q.ID, &q.Prompt, &q.Options, &q.CorrectIndex, &q.Category, &q.Tier)
		return q, err
	})
}

// excludeParam normalizes a nil exclusion list so ANY() sees an empty array.
func excludeParam(exclude []string) []string {
	if exclude == nil {
		return []string{}
	}
	return exclude
}
