package voucher

import "time"

// Redemption states. The engine only ever writes StatusActive; redemption and
// expiry flips belong to the external reward flow.
const (
	StatusActive   = "active"
	StatusRedeemed = "redeemed"
	StatusExpired  = "expired"
)

// Voucher is a redeemable discount earned by a consolation-band rank.
type Voucher struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	ParticipantID   string    `json:"participant_id"`
	DiscountPercent int       `json:"discount_percent"`
	IssuedAt        time.Time `json:"issued_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	Status          string    `json:"status"`
	QuizDate        time.Time `json:"quiz_date"`
	Rank            int       `json:"rank"`
}
