package voucher

import "errors"

var (
	// ErrDuplicateVoucher is raised by the store when the
	// (participant, quiz date) uniqueness constraint fires.
	ErrDuplicateVoucher = errors.New("voucher already exists for participant and date")
	// ErrCodeCollision is raised by the store when a generated code is taken.
	ErrCodeCollision = errors.New("voucher code already in use")
	// ErrCodeExhausted is returned after bounded regeneration attempts all collide.
	ErrCodeExhausted = errors.New("could not generate a unique voucher code")
)
