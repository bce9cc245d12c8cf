package question

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// stubBank serves questions in insertion order; uniformity of the random
// draw is the repository's concern, not the sampler's.
type stubBank struct {
	questions []Question
}

func (b *stubBank) RandomByTierAndCategory(_ context.Context, tier, category string, limit int, exclude []string) ([]Question, error) {
	return b.filter(limit, exclude, func(q Question) bool {
		return q.Tier == tier && q.Category == category
	}), nil
}

func (b *stubBank) RandomByTier(_ context.Context, tier string, limit int, exclude []string) ([]Question, error) {
	return b.filter(limit, exclude, func(q Question) bool {
		return q.Tier == tier
	}), nil
}

func (b *stubBank) RandomAny(_ context.Context, limit int, exclude []string) ([]Question, error) {
	return b.filter(limit, exclude, func(Question) bool { return true }), nil
}

func (b *stubBank) filter(limit int, exclude []string, match func(Question) bool) []Question {
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []Question
	for _, q := range b.questions {
		if len(out) >= limit {
			break
		}
		if _, skip := excluded[q.ID]; skip {
			continue
		}
		if match(q) {
			out = append(out, q)
		}
	}
	return out
}

func bankQuestion(id, tier, category string) Question {
	return Question{
		ID:           id,
		Prompt:       "Prompt " + id,
		Options:      []string{"A", "B", "C", "D"},
		CorrectIndex: 0,
		Category:     category,
		Tier:         tier,
	}
}

func stockedBank(tier string, categories []string, perCategory int) *stubBank {
	bank := &stubBank{}
	for _, c := range categories {
		for i := 0; i < perCategory; i++ {
			bank.questions = append(bank.questions, bankQuestion(fmt.Sprintf("%s-%s-%d", tier, c, i), tier, c))
		}
	}
	return bank
}

func TestSampleBalancedAcrossCategories(t *testing.T) {
	categories := []string{"mathematics", "science", "english"}
	bank := stockedBank(TierEasy, categories, 3)
	sampler := NewSampler(bank, zerolog.New(io.Discard))

	got, err := sampler.Sample(context.Background(), TierEasy, categories, 2)
	assert.NoError(t, err)
	assert.Len(t, got, 6)

	perCategory := map[string]int{}
	seen := map[string]struct{}{}
	for _, q := range got {
		perCategory[q.Category]++
		_, dup := seen[q.ID]
		assert.False(t, dup, "duplicate question %s", q.ID)
		seen[q.ID] = struct{}{}
	}
	for _, c := range categories {
		assert.Equal(t, 2, perCategory[c])
	}
}

func TestSampleFallsBackWithinTierAndRelabels(t *testing.T) {
	// science has nothing in the easy tier; mathematics is over-stocked.
	bank := &stubBank{questions: []Question{
		bankQuestion("m1", TierEasy, "mathematics"),
		bankQuestion("m2", TierEasy, "mathematics"),
		bankQuestion("m3", TierEasy, "mathematics"),
		bankQuestion("m4", TierEasy, "mathematics"),
	}}
	sampler := NewSampler(bank, zerolog.New(io.Discard))

	got, err := sampler.Sample(context.Background(), TierEasy, []string{"mathematics", "science"}, 2)
	assert.NoError(t, err)
	assert.Len(t, got, 4)

	assert.Equal(t, "mathematics", got[0].Category)
	assert.Equal(t, "mathematics", got[1].Category)
	// Extras report the category they stand in for.
	assert.Equal(t, "science", got[2].Category)
	assert.Equal(t, "science", got[3].Category)

	seen := map[string]struct{}{}
	for _, q := range got {
		_, dup := seen[q.ID]
		assert.False(t, dup)
		seen[q.ID] = struct{}{}
	}
}

func TestSampleFallsBackAcrossTiers(t *testing.T) {
	bank := &stubBank{questions: []Question{
		bankQuestion("e1", TierEasy, "mathematics"),
		bankQuestion("h1", TierHard, "history"),
		bankQuestion("h2", TierHard, "general"),
		bankQuestion("m1", TierMedium, "science"),
	}}
	sampler := NewSampler(bank, zerolog.New(io.Discard))

	got, err := sampler.Sample(context.Background(), TierEasy, []string{"mathematics", "science"}, 2)
	assert.NoError(t, err)
	assert.Len(t, got, 4)

	perCategory := map[string]int{}
	for _, q := range got {
		perCategory[q.Category]++
	}
	assert.Equal(t, 2, perCategory["mathematics"])
	assert.Equal(t, 2, perCategory["science"])
}

func TestSampleEmptyBank(t *testing.T) {
	sampler := NewSampler(&stubBank{}, zerolog.New(io.Discard))

	_, err := sampler.Sample(context.Background(), TierEasy, []string{"mathematics"}, 2)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestSampleInsufficientBank(t *testing.T) {
	bank := &stubBank{questions: []Question{
		bankQuestion("only", TierEasy, "mathematics"),
	}}
	sampler := NewSampler(bank, zerolog.New(io.Discard))

	_, err := sampler.Sample(context.Background(), TierEasy, []string{"mathematics", "science"}, 2)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestClientViewHidesAnswerKey(t *testing.T) {
	q := bankQuestion("q1", TierEasy, "science")
	q.CorrectIndex = 2

	view := q.ClientView()
	assert.Equal(t, q.ID, view.ID)
	assert.Equal(t, q.Options, view.Options)

	views := ClientViews([]Question{q})
	assert.Len(t, views, 1)
}
