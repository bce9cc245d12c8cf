package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/question"
)

// QuestionLoader fetches question bodies by ID, used to rebuild the client
// view when a same-day refetch returns a previously pinned set.
type QuestionLoader interface {
	ByIDs(ctx context.Context, ids []string) ([]question.Question, error)
}

// Service orchestrates the question fetch flow: gate, sample, pin the served
// set, and hand back the answer-free client view.
type Service struct {
	gate         *Gatekeeper
	sampler      *question.Sampler
	loader       QuestionLoader
	served       ServedSetStore
	participants ParticipantStore
	categories   []string
	perCategory  int
	loc          *time.Location
	logger       zerolog.Logger
	now          func() time.Time
}

// ServiceOptions configure sampling shape; Now is overridable for tests.
type ServiceOptions struct {
	Categories  []string
	PerCategory int
	Now         func() time.Time
}

// NewService constructs the attempt service.
func NewService(gate *Gatekeeper, sampler *question.Sampler, loader QuestionLoader, served ServedSetStore, participants ParticipantStore, loc *time.Location, opts ServiceOptions, logger zerolog.Logger) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	perCategory := opts.PerCategory
	if perCategory <= 0 {
		perCategory = 2
	}
	return &Service{
		gate:         gate,
		sampler:      sampler,
		loader:       loader,
		served:       served,
		participants: participants,
		categories:   opts.Categories,
		perCategory:  perCategory,
		loc:          loc,
		logger:       logger.With().Str("component", "attempt_service").Logger(),
		now:          now,
	}
}

// StartAttempt runs the gate and, when allowed, serves today's question set.
// The set issued on the first fetch of the day is pinned; a retry within the
// same day gets the identical set back, so a flaky connection cannot reroll
// questions. Denials come back in the Decision with a retry time, not as errors.
func (s *Service) StartAttempt(ctx context.Context, participantID, tier string) ([]question.ClientQuestion, Decision, error) {
	participantID = NormalizeParticipantID(participantID)
	now := s.now()

	decision, err := s.gate.CanStart(ctx, participantID, now)
	if err != nil {
		return nil, Decision{}, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	participant, err := s.participants.Find(ctx, participantID)
	if err != nil {
		return nil, Decision{}, fmt.Errorf("start attempt: load participant: %w", err)
	}
	if participant == nil {
		return nil, Decision{}, ErrParticipantNotFound
	}
	if tier == "" {
		tier = participant.Tier
	}

	sampled, err := s.sampler.Sample(ctx, tier, s.categories, s.perCategory)
	if err != nil {
		return nil, Decision{}, err
	}

	servedQuestions := make([]ServedQuestion, 0, len(sampled))
	for _, q := range sampled {
		servedQuestions = append(servedQuestions, ServedQuestion{
			ID:           q.ID,
			CorrectIndex: q.CorrectIndex,
			Category:     q.Category,
		})
	}

	set, created, err := s.served.Save(ctx, ServedSet{
		ParticipantID: participantID,
		QuizDate:      DateOf(now, s.loc),
		Tier:          tier,
		Questions:     servedQuestions,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, Decision{}, fmt.Errorf("start attempt: pin served set: %w", err)
	}

	// Best-effort activity touch; never blocks or fails the serve.
	go func() {
		touchCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.participants.TouchLastActive(touchCtx, participantID, now); err != nil {
			s.logger.Debug().Err(err).Str("participant", participantID).Msg("last-active touch failed")
		}
	}()

	if created {
		return question.ClientViews(sampled), decision, nil
	}

	views, err := s.viewsForPinnedSet(ctx, set)
	if err != nil {
		return nil, Decision{}, err
	}
	return views, decision, nil
}

// viewsForPinnedSet reloads question bodies for a set pinned by an earlier
// fetch today, preserving the served order and reported categories.
func (s *Service) viewsForPinnedSet(ctx context.Context, set ServedSet) ([]question.ClientQuestion, error) {
	ids := make([]string, 0, len(set.Questions))
	for _, sq := range set.Questions {
		ids = append(ids, sq.ID)
	}
	loaded, err := s.loader.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("start attempt: reload pinned set: %w", err)
	}
	byID := make(map[string]question.Question, len(loaded))
	for _, q := range loaded {
		byID[q.ID] = q
	}
	views := make([]question.ClientQuestion, 0, len(set.Questions))
	for _, sq := range set.Questions {
		q, ok := byID[sq.ID]
		if !ok {
			return nil, fmt.Errorf("start attempt: pinned question %s missing from bank", sq.ID)
		}
		view := q.ClientView()
		view.Category = sq.Category
		views = append(views, view)
	}
	return views, nil
}
