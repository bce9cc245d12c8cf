package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/metrics"
	"github.com/brightpath-edu/daily-quiz/internal/settings"
)

// ServedSetStore records and retrieves the authoritative question sets issued
// per participant per quiz date. Save keeps the first set of the day; a repeat
// serve returns the original with created=false so scoring stays anchored to
// what was issued.
type ServedSetStore interface {
	Save(ctx context.Context, set ServedSet) (ServedSet, bool, error)
	Get(ctx context.Context, participantID string, date time.Time) (*ServedSet, error)
}

// ParticipantStore covers the engine's read-mostly view of enrollments.
type ParticipantStore interface {
	Find(ctx context.Context, participantID string) (*Participant, error)
	TouchLastActive(ctx context.Context, participantID string, at time.Time) error
}

// SubmitRequest carries a completed attempt from the client. Answers are
// option indices aligned positionally with the served question order.
type SubmitRequest struct {
	ParticipantID  string
	Tier           string
	Answers        []int
	ElapsedSeconds int
}

// Pipeline scores completed attempts against the stored answer key and
// persists exactly one immutable result per participant per day.
type Pipeline struct {
	results      ResultStore
	served       ServedSetStore
	participants ParticipantStore
	settings     settings.Provider
	loc          *time.Location
	metrics      *metrics.Engine
	logger       zerolog.Logger
	now          func() time.Time
}

// PipelineOptions tune the pipeline; Now is overridable for tests.
type PipelineOptions struct {
	Now func() time.Time
}

// NewPipeline constructs the submission pipeline.
func NewPipeline(results ResultStore, served ServedSetStore, participants ParticipantStore, provider settings.Provider, loc *time.Location, m *metrics.Engine, opts PipelineOptions, logger zerolog.Logger) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		results:      results,
		served:       served,
		participants: participants,
		settings:     provider,
		loc:          loc,
		metrics:      m,
		logger:       logger.With().Str("component", "submission_pipeline").Logger(),
		now:          now,
	}
}

// Submit scores the attempt against the served answer key and persists the
// result. Scoring is positional and fully server-side. Elapsed time outside
// [0, attempt duration] is clamped and the row flagged suspicious. A second
// same-day submission returns the first result unchanged; the storage unique
// constraint closes the race the gate cannot see.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (Result, error) {
	participantID := NormalizeParticipantID(req.ParticipantID)
	now := p.now()
	today := DateOf(now, p.loc)

	cfg, err := p.settings.Current(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("submit: read settings: %w", err)
	}

	set, err := p.served.Get(ctx, participantID, today)
	if err != nil {
		return Result{}, fmt.Errorf("submit: load served set: %w", err)
	}
	if set == nil {
		return Result{}, ErrNoServedSet
	}

	participant, err := p.participants.Find(ctx, participantID)
	if err != nil {
		return Result{}, fmt.Errorf("submit: load participant: %w", err)
	}
	if participant == nil {
		return Result{}, ErrParticipantNotFound
	}

	score := scoreAnswers(set.Questions, req.Answers)

	elapsed, suspicious := clampElapsed(req.ElapsedSeconds, cfg.DurationSeconds)
	if suspicious {
		if p.metrics != nil {
			p.metrics.SuspiciousSubmissions.Inc()
		}
		p.logger.Warn().
			Str("participant", participantID).
			Int("reported_elapsed", req.ElapsedSeconds).
			Int("clamped_elapsed", elapsed).
			Msg("elapsed time outside attempt duration, flagged")
	}

	result := Result{
		ID:              uuid.NewString(),
		ParticipantID:   participantID,
		ParticipantName: participant.DisplayName,
		Score:           score,
		TotalQuestions:  len(set.Questions),
		Tier:            set.Tier,
		ElapsedSeconds:  elapsed,
		Suspicious:      suspicious,
		QuizDate:        today,
		CreatedAt:       now,
	}

	stored, created, err := p.results.Insert(ctx, result)
	if err != nil {
		return Result{}, fmt.Errorf("submit: persist result: %w", err)
	}
	if !created {
		p.logger.Info().
			Str("participant", participantID).
			Time("quiz_date", today).
			Msg("duplicate submission, returning existing result")
		return stored, nil
	}

	if p.metrics != nil {
		p.metrics.SubmissionsScored.Inc()
	}
	return stored, nil
}

func scoreAnswers(key []ServedQuestion, answers []int) int {
	score := 0
	for i, q := range key {
		if i >= len(answers) {
			break
		}
		if answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

func clampElapsed(reported, durationSeconds int) (clamped int, suspicious bool) {
	if reported < 0 {
		return 0, true
	}
	if durationSeconds > 0 && reported > durationSeconds {
		return durationSeconds, true
	}
	return reported, false
}
