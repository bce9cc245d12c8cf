package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/metrics"
	"github.com/brightpath-edu/daily-quiz/internal/settings"
)

// Denial reasons surfaced to clients with a retry time. These are expected
// conditions, not failures.
const (
	ReasonAlreadyAttempted = "already_attempted"
	ReasonWindowNotOpen    = "window_not_open"
	ReasonWindowClosed     = "window_closed"
	ReasonQuizDisabled     = "quiz_disabled"
)

// Decision is the gatekeeper's verdict for one participant at one instant.
type Decision struct {
	Allowed         bool
	Reason          string
	NextAvailableAt time.Time
}

// ResultStore is the slice of result persistence the gatekeeper and the
// submission pipeline need.
type ResultStore interface {
	FindByParticipantAndDate(ctx context.Context, participantID string, date time.Time) (*Result, error)
	// Insert persists a result, deferring the one-per-day invariant to the
	// storage layer's unique constraint. When a row for (participant, date)
	// already exists it is returned unchanged with created=false.
	Insert(ctx context.Context, result Result) (Result, bool, error)
}

// Gatekeeper decides whether a participant may start a scored attempt now.
type Gatekeeper struct {
	results  ResultStore
	settings settings.Provider
	loc      *time.Location
	metrics  *metrics.Engine
	logger   zerolog.Logger
}

// NewGatekeeper constructs the daily attempt gate.
func NewGatekeeper(results ResultStore, provider settings.Provider, loc *time.Location, m *metrics.Engine, logger zerolog.Logger) *Gatekeeper {
	return &Gatekeeper{
		results:  results,
		settings: provider,
		loc:      loc,
		metrics:  m,
		logger:   logger.With().Str("component", "gatekeeper").Logger(),
	}
}

// CanStart evaluates the daily gate for participantID at now. Settings are
// read fresh on every call so an administrator's window change applies
// immediately. The existing-attempt check runs before the window check: a
// participant who already played today is told so even after close, and one
// who never played but queries after close gets "closed", never "attempted".
func (g *Gatekeeper) CanStart(ctx context.Context, participantID string, now time.Time) (Decision, error) {
	cfg, err := g.settings.Current(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("gatekeeper: read settings: %w", err)
	}

	windowStart, windowEnd, err := cfg.WindowFor(now, g.loc)
	if err != nil {
		return Decision{}, fmt.Errorf("gatekeeper: resolve window: %w", err)
	}

	if !cfg.QuizEnabled {
		return g.deny(ReasonQuizDisabled, time.Time{}), nil
	}

	today := DateOf(now, g.loc)
	existing, err := g.results.FindByParticipantAndDate(ctx, NormalizeParticipantID(participantID), today)
	if err != nil {
		return Decision{}, fmt.Errorf("gatekeeper: check prior attempt: %w", err)
	}
	if existing != nil {
		return g.deny(ReasonAlreadyAttempted, windowStart.AddDate(0, 0, 1)), nil
	}

	if now.Before(windowStart) {
		return g.deny(ReasonWindowNotOpen, windowStart), nil
	}
	if now.After(windowEnd) {
		return g.deny(ReasonWindowClosed, windowStart.AddDate(0, 0, 1)), nil
	}

	if g.metrics != nil {
		g.metrics.AttemptsAllowed.Inc()
	}
	return Decision{Allowed: true}, nil
}

func (g *Gatekeeper) deny(reason string, next time.Time) Decision {
	if g.metrics != nil {
		g.metrics.AttemptsDenied.WithLabelValues(reason).Inc()
	}
	return Decision{Reason: reason, NextAvailableAt: next}
}
