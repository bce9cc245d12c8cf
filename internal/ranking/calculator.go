package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	"github.com/brightpath-edu/daily-quiz/internal/metrics"
	"github.com/brightpath-edu/daily-quiz/internal/settings"
	"github.com/brightpath-edu/daily-quiz/internal/voucher"
)

// RankUpdate carries one row's computed rank to the bulk writer.
type RankUpdate struct {
	ResultID   string
	Rank       int
	ComputedAt time.Time
}

// Store is the result persistence slice the calculator needs. ListByDateOrdered
// must return the full day ordered by score descending, then elapsed seconds
// ascending; rank assignment needs a single globally sorted view.
type Store interface {
	ListByDateOrdered(ctx context.Context, date time.Time) ([]attempt.Result, error)
	UpdateRanks(ctx context.Context, updates []RankUpdate) error
}

// ConsolationIssuer issues the reward for one ranked row; created reports
// whether this run minted the voucher or found it from an earlier run.
type ConsolationIssuer interface {
	IssueIfEligible(ctx context.Context, participantID string, date time.Time, rank int) (*voucher.Voucher, bool, error)
}

// Outcome summarizes one calculator run.
type Outcome struct {
	Ranked         int `json:"ranked"`
	VouchersIssued int `json:"vouchers_issued"`
}

// Options shape the consolation band and bulk-update chunking.
type Options struct {
	// BandLower is exclusive, BandUpper inclusive: ranks in (lower, upper]
	// earn a consolation voucher.
	BandLower int
	BandUpper int
	ChunkSize int
	Now       func() time.Time
}

// Calculator ranks a day's results and dispatches consolation vouchers.
// One logical batch run per date; the run lock refuses concurrent runs and
// the idempotent rank writes plus idempotent issuer make reruns harmless.
type Calculator struct {
	store    Store
	issuer   ConsolationIssuer
	lock     RunLock
	settings settings.Provider
	opts     Options
	metrics  *metrics.Engine
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCalculator constructs the batch ranking calculator.
func NewCalculator(store Store, issuer ConsolationIssuer, lock RunLock, provider settings.Provider, m *metrics.Engine, opts Options, logger zerolog.Logger) *Calculator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Calculator{
		store:    store,
		issuer:   issuer,
		lock:     lock,
		settings: provider,
		opts:     opts,
		metrics:  m,
		logger:   logger.With().Str("component", "ranking_calculator").Logger(),
		now:      now,
	}
}

// Run ranks every result for date and issues vouchers for the consolation
// band. Zero rows is a clean no-op. A crash mid-run leaves resumable state:
// rank writes and voucher issuance are independently idempotent per row, so
// the next run converges without duplicating rewards.
func (c *Calculator) Run(ctx context.Context, date time.Time) (Outcome, error) {
	acquired, err := c.lock.Acquire(ctx, date)
	if err != nil {
		return Outcome{}, err
	}
	if !acquired {
		return Outcome{}, ErrRankingInProgress
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.lock.Release(releaseCtx, date); err != nil {
			c.logger.Warn().Err(err).Msg("ranking lock release failed, TTL will reap it")
		}
	}()

	cfg, err := c.settings.Current(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("ranking: read settings: %w", err)
	}

	rows, err := c.store.ListByDateOrdered(ctx, date)
	if err != nil {
		return Outcome{}, fmt.Errorf("ranking: list results: %w", err)
	}
	if len(rows) == 0 {
		c.logger.Info().Time("date", date).Msg("nothing to rank")
		return Outcome{}, nil
	}

	ranks := assignRanks(rows)
	computedAt := c.now()

	updates := make([]RankUpdate, len(rows))
	for i, row := range rows {
		updates[i] = RankUpdate{ResultID: row.ID, Rank: ranks[i], ComputedAt: computedAt}
	}
	for start := 0; start < len(updates); start += c.opts.ChunkSize {
		end := start + c.opts.ChunkSize
		if end > len(updates) {
			end = len(updates)
		}
		if err := c.store.UpdateRanks(ctx, updates[start:end]); err != nil {
			return Outcome{}, fmt.Errorf("ranking: persist ranks [%d:%d]: %w", start, end, err)
		}
	}

	outcome := Outcome{Ranked: len(rows)}
	if cfg.VouchersEnabled {
		for i, row := range rows {
			rank := ranks[i]
			if rank <= c.opts.BandLower || rank > c.opts.BandUpper {
				continue
			}
			_, created, err := c.issuer.IssueIfEligible(ctx, row.ParticipantID, date, rank)
			if err != nil {
				return outcome, fmt.Errorf("ranking: issue voucher for %s: %w", row.ParticipantID, err)
			}
			if created {
				outcome.VouchersIssued++
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RankingRuns.Inc()
		c.metrics.RowsRanked.Add(float64(outcome.Ranked))
	}
	c.logger.Info().
		Time("date", date).
		Int("ranked", outcome.Ranked).
		Int("vouchers", outcome.VouchersIssued).
		Msg("ranking run complete")
	return outcome, nil
}

// assignRanks walks rows already sorted by score desc, elapsed asc and
// assigns dense competition ranks with position-based ties: rows tied on
// both keys share the first tied position's rank, and the next distinct row
// takes its own 1-based position, leaving a gap after the tie group.
func assignRanks(rows []attempt.Result) []int {
	ranks := make([]int, len(rows))
	for i, row := range rows {
		if i > 0 && row.Score == rows[i-1].Score && row.ElapsedSeconds == rows[i-1].ElapsedSeconds {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
