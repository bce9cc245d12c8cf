package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/metrics"
)

// Store persists vouchers. Insert must surface ErrDuplicateVoucher when the
// (participant, quiz date) constraint fires and ErrCodeCollision when the
// code constraint fires, so the issuer can tell recovery from regeneration.
type Store interface {
	FindByParticipantAndDate(ctx context.Context, participantID string, date time.Time) (*Voucher, error)
	Insert(ctx context.Context, v Voucher) error
	ListActive(ctx context.Context, participantID string, now time.Time) ([]Voucher, error)
}

const maxCodeAttempts = 5

// Codes avoid 0/O/1/I/L to stay legible on printed receipts.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Issuer creates at most one voucher per participant per quiz date.
type Issuer struct {
	store   Store
	opts    IssuerOptions
	metrics *metrics.Engine
	logger  zerolog.Logger
	now     func() time.Time
}

// IssuerOptions configure discount, validity and code shape.
type IssuerOptions struct {
	DiscountPercent int
	Validity        time.Duration
	CodeLength      int
	Now             func() time.Time
}

// NewIssuer constructs a voucher issuer.
func NewIssuer(store Store, m *metrics.Engine, opts IssuerOptions, logger zerolog.Logger) *Issuer {
	if opts.DiscountPercent <= 0 {
		opts.DiscountPercent = 10
	}
	if opts.Validity <= 0 {
		opts.Validity = 30 * 24 * time.Hour
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = 10
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		store:   store,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "voucher_issuer").Logger(),
		now:     now,
	}
}

// IssueIfEligible returns the participant's voucher for date, creating it if
// absent; created reports whether this call minted a new voucher. Invoked once
// per consolation-band row by the ranking calculator and safe under re-runs
// and concurrent invocation: an existing voucher is always returned unchanged,
// and a lost insert race recovers the winner's row. Code collisions are
// retried with fresh codes a bounded number of times.
func (i *Issuer) IssueIfEligible(ctx context.Context, participantID string, date time.Time, rank int) (v *Voucher, created bool, err error) {
	existing, err := i.store.FindByParticipantAndDate(ctx, participantID, date)
	if err != nil {
		return nil, false, fmt.Errorf("issue voucher: lookup: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	issuedAt := i.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := Voucher{
			ID:              uuid.NewString(),
			Code:            generateCode(i.opts.CodeLength),
			ParticipantID:   participantID,
			DiscountPercent: i.opts.DiscountPercent,
			IssuedAt:        issuedAt,
			ExpiresAt:       issuedAt.Add(i.opts.Validity),
			Status:          StatusActive,
			QuizDate:        date,
			Rank:            rank,
		}

		err := i.store.Insert(ctx, candidate)
		switch {
		case err == nil:
			if i.metrics != nil {
				i.metrics.VouchersIssued.Inc()
			}
			return &candidate, true, nil
		case errors.Is(err, ErrDuplicateVoucher):
			// Lost a concurrent race; the winner's voucher is the voucher.
			winner, lookupErr := i.store.FindByParticipantAndDate(ctx, participantID, date)
			if lookupErr != nil {
				return nil, false, fmt.Errorf("issue voucher: recover duplicate: %w", lookupErr)
			}
			if winner == nil {
				return nil, false, fmt.Errorf("issue voucher: duplicate reported but no row found for %s", participantID)
			}
			return winner, false, nil
		case errors.Is(err, ErrCodeCollision):
			i.logger.Debug().Str("participant", participantID).Int("attempt", attempt+1).Msg("voucher code collision, regenerating")
			continue
		default:
			return nil, false, fmt.Errorf("issue voucher: insert: %w", err)
		}
	}
	return nil, false, ErrCodeExhausted
}

func generateCode(length int) string {
	code := make([]byte, 0, length)
	for len(code) < length {
		id := uuid.New()
		for _, b := range id {
			if len(code) >= length {
				break
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
		}
	}
	return string(code)
}
