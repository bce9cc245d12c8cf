package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-edu/daily-quiz/internal/voucher"
)

// Constraint names from the vouchers migration; Insert maps violations onto
// the issuer's sentinel errors so it can tell recovery from regeneration.
const (
	voucherOwnerConstraint = "uq_vouchers_participant_quiz_date"
	voucherCodeConstraint  = "uq_vouchers_code"
)

const uniqueViolation = "23505"

// VoucherRepository persists consolation vouchers.
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// NewVoucherRepository constructs a voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

var _ voucher.Store = (*VoucherRepository)(nil)

const voucherColumns = `
	id, code, participant_id, discount_percent, issued_at, expires_at, status, quiz_date, rank`

// FindByParticipantAndDate returns the voucher for (participant, date), or nil.
func (r *VoucherRepository) FindByParticipantAndDate(ctx context.Context, participantID string, date time.Time) (*voucher.Voucher, error) {
	q := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE participant_id = $1 AND quiz_date = $2`

	row := r.pool.QueryRow(ctx, q, participantID, date)
	v, err := scanVoucher(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert writes a voucher, translating unique violations into the issuer's
// sentinels: one per (participant, date) and globally unique codes.
func (r *VoucherRepository) Insert(ctx context.Context, v voucher.Voucher) error {
	const q = `
		INSERT INTO vouchers (
			id, code, participant_id, discount_percent, issued_at, expires_at, status, quiz_date, rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, q,
		v.ID, v.Code, v.ParticipantID, v.DiscountPercent,
		v.IssuedAt, v.ExpiresAt, v.Status, v.QuizDate, v.Rank,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case voucherOwnerConstraint:
			return voucher.ErrDuplicateVoucher
		case voucherCodeConstraint:
			return voucher.ErrCodeCollision
		}
	}
	return err
}

// ListActive returns unredeemed vouchers that have not passed expiry.
func (r *VoucherRepository) ListActive(ctx context.Context, participantID string, now time.Time) ([]voucher.Voucher, error) {
	q := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE participant_id = $1 AND status = $2 AND expires_at > $3
		ORDER BY issued_at DESC`

	rows, err := r.pool.Query(ctx, q, participantID, voucher.StatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (voucher.Voucher, error) {
		return scanVoucher(row)
	})
}

func scanVoucher(row rowScanner) (voucher.Voucher, error) {
	var v voucher.Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.ParticipantID, &v.DiscountPercent,
		&v.IssuedAt, &v.ExpiresAt, &v.Status, &v.QuizDate, &v.Rank,
	)
	return v, err
}
