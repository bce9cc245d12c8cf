package attempt

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/brightpath-edu/daily-quiz/internal/question"
)

// serviceBank implements both question.Bank and QuestionLoader over a slice.
type serviceBank struct {
	questions []question.Question
}

func (b *serviceBank) RandomByTierAndCategory(_ context.Context, tier, category string, limit int, exclude []string) ([]question.Question, error) {
	return b.filter(limit, exclude, func(q question.Question) bool {
		return q.Tier == tier && q.Category == category
	}), nil
}

func (b *serviceBank) RandomByTier(_ context.Context, tier string, limit int, exclude []string) ([]question.Question, error) {
	return b.filter(limit, exclude, func(q question.Question) bool { return q.Tier == tier }), nil
}

func (b *serviceBank) RandomAny(_ context.Context, limit int, exclude []string) ([]question.Question, error) {
	return b.filter(limit, exclude, func(question.Question) bool { return true }), nil
}

func (b *serviceBank) ByIDs(_ context.Context, ids []string) ([]question.Question, error) {
	wanted := map[string]struct{}{}
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []question.Question
	for _, q := range b.questions {
		if _, ok := wanted[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *serviceBank) filter(limit int, exclude []string, match func(question.Question) bool) []question.Question {
	excluded := map[string]struct{}{}
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []question.Question
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

func newServiceBank() *serviceBank {
	bank := &serviceBank{}
	for _, category := range []string{"mathematics", "science"} {
		for i := 0; i < 4; i++ {
			bank.questions = append(bank.questions, question.Question{
				ID:           fmt.Sprintf("%s-%d", category, i),
				Prompt:       "Prompt",
				Options:      []string{"A", "B", "C", "D"},
				CorrectIndex: 1,
				Category:     category,
				Tier:         "easy",
			})
		}
	}
	return bank
}

func newTestService(bank *serviceBank, results ResultStore, served ServedSetStore, participants ParticipantStore) *Service {
	logger := zerolog.New(io.Discard)
	gate := NewGatekeeper(results, &stubSettings{current: openSettings()}, time.UTC, nil, logger)
	sampler := question.NewSampler(bank, logger)
	return NewService(gate, sampler, bank, served, participants, time.UTC, ServiceOptions{
		Categories:  []string{"mathematics", "science"},
		PerCategory: 2,
		Now:         fixedNow,
	}, logger)
}

func TestStartAttemptServesAnswerFreeSetAndPinsIt(t *testing.T) {
	served := newStubServedStore()
	participants := newStubParticipantStore(Participant{ID: "student-1", DisplayName: "Asha", Tier: "easy"})
	svc := newTestService(newServiceBank(), newStubResultStore(), served, participants)

	views, decision, err := svc.StartAttempt(context.Background(), "student-1", "")
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Len(t, views, 4)

	pinned, err := served.Get(context.Background(), "student-1", DateOf(fixedNow(), time.UTC))
	assert.NoError(t, err)
	assert.NotNil(t, pinned)
	assert.Len(t, pinned.Questions, 4)
	// The answer key travels only with the pinned server-side copy.
	for i, view := range views {
		assert.Equal(t, pinned.Questions[i].ID, view.ID)
	}
}

func TestStartAttemptRefetchReturnsPinnedSet(t *testing.T) {
	served := newStubServedStore()
	participants := newStubParticipantStore(Participant{ID: "student-1", DisplayName: "Asha", Tier: "easy"})
	svc := newTestService(newServiceBank(), newStubResultStore(), served, participants)

	first, _, err := svc.StartAttempt(context.Background(), "student-1", "")
	assert.NoError(t, err)

	second, decision, err := svc.StartAttempt(context.Background(), "student-1", "")
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestStartAttemptDeniedReturnsDecisionNotError(t *testing.T) {
	results := newStubResultStore()
	today := DateOf(fixedNow(), time.UTC)
	results.rows[resultKey("student-1", today)] = Result{ParticipantID: "student-1", QuizDate: today}
	participants := newStubParticipantStore(Participant{ID: "student-1", DisplayName: "Asha", Tier: "easy"})
	svc := newTestService(newServiceBank(), results, newStubServedStore(), participants)

	views, decision, err := svc.StartAttempt(context.Background(), "student-1", "")
	assert.NoError(t, err)
	assert.Nil(t, views)
	assert.Equal(t, ReasonAlreadyAttempted, decision.Reason)
}

func TestStartAttemptUnknownParticipant(t *testing.T) {
	svc := newTestService(newServiceBank(), newStubResultStore(), newStubServedStore(), newStubParticipantStore())

	_, _, err := svc.StartAttempt(context.Background(), "nobody", "")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestStartAttemptEmptyBank(t *testing.T) {
	participants := newStubParticipantStore(Participant{ID: "student-1", DisplayName: "Asha", Tier: "easy"})
	svc := newTestService(&serviceBank{}, newStubResultStore(), newStubServedStore(), participants)

	_, _, err := svc.StartAttempt(context.Background(), "student-1", "")
	assert.ErrorIs(t, err, question.ErrNoQuestions)
}
