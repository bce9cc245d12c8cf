package voucher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service exposes the read surface consumed by the reward-redemption UI.
type Service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService constructs the voucher query service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "voucher_service").Logger(),
		now:    time.Now,
	}
}

// ActiveVouchers lists a participant's unredeemed, unexpired vouchers.
func (s *Service) ActiveVouchers(ctx context.Context, participantID string) ([]Voucher, error) {
	vouchers, err := s.store.ListActive(ctx, participantID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list active vouchers: %w", err)
	}
	return vouchers, nil
}
