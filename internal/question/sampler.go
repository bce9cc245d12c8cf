package question

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Bank provides uniform random draws from the question pool. Draws exclude
// already-used IDs so a sampled set never repeats a question. Implemented by
// the Postgres question repository.
type Bank interface {
	RandomByTierAndCategory(ctx context.Context, tier, category string, limit int, exclude []string) ([]Question, error)
	RandomByTier(ctx context.Context, tier string, limit int, exclude []string) ([]Question, error)
	RandomAny(ctx context.Context, limit int, exclude []string) ([]Question, error)
}

// Sampler assembles category-balanced question sets for one attempt.
type Sampler struct {
	bank   Bank
	logger zerolog.Logger
}

// NewSampler constructs a sampler over the given bank.
func NewSampler(bank Bank, logger zerolog.Logger) *Sampler {
	return &Sampler{
		bank:   bank,
		logger: logger.With().Str("component", "sampler").Logger(),
	}
}

// Sample returns exactly len(categories)*perCategory questions with no
// duplicates. Categories are processed in the given stable order. When a
// (tier, category) bucket is under-stocked the shortfall is topped up from the
// same tier across all categories, then from the entire bank; extras are
// relabeled to the category they stand in for so grouping stays consistent
// downstream. Returns ErrNoQuestions when the bank as a whole cannot cover
// the request.
func (s *Sampler) Sample(ctx context.Context, tier string, categories []string, perCategory int) ([]Question, error) {
	if perCategory <= 0 || len(categories) == 0 {
		return nil, fmt.Errorf("sample: need at least one category and a positive per-category count")
	}

	want := len(categories) * perCategory
	result := make([]Question, 0, want)
	used := make(map[string]struct{}, want)

	for _, category := range categories {
		picked, err := s.bank.RandomByTierAndCategory(ctx, tier, category, perCategory, keys(used))
		if err != nil {
			return nil, fmt.Errorf("sample %s/%s: %w", tier, category, err)
		}
		picked = dedupe(picked, used)

		if shortfall := perCategory - len(picked); shortfall > 0 {
			extra, err := s.bank.RandomByTier(ctx, tier, shortfall, keys(used))
			if err != nil {
				return nil, fmt.Errorf("sample tier fallback %s: %w", tier, err)
			}
			picked = append(picked, relabel(dedupe(extra, used), category)...)
		}

		if shortfall := perCategory - len(picked); shortfall > 0 {
			extra, err := s.bank.RandomAny(ctx, shortfall, keys(used))
			if err != nil {
				return nil, fmt.Errorf("sample bank fallback: %w", err)
			}
			picked = append(picked, relabel(dedupe(extra, used), category)...)
			s.logger.Debug().
				Str("tier", tier).
				Str("category", category).
				Int("bank_fallback", len(extra)).
				Msg("category under-stocked, drew across tiers")
		}

		result = append(result, picked...)
	}

	if len(result) < want {
		s.logger.Warn().
			Str("tier", tier).
			Int("want", want).
			Int("got", len(result)).
			Msg("question bank starved")
		return nil, ErrNoQuestions
	}
	return result, nil
}

func dedupe(qs []Question, used map[string]struct{}) []Question {
	out := qs[:0]
	for _, q := range qs {
		if _, seen := used[q.ID]; seen {
			continue
		}
		used[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

func relabel(qs []Question, category string) []Question {
	for i := range qs {
		qs[i].Category = category
	}
	return qs
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
