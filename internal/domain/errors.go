package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrInvalidAmount        = errors.New("payment amount must be greater than zero")
	ErrAlreadySettled       = errors.New("reservation is already fully paid")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrDuplicatePayment     = errors.New("a payment with this idempotency key already exists")
	ErrIdempotencyKeyReuse  = errors.New("idempotency key was already used for a different payment")
	ErrPaymentVoided        = errors.New("payment is voided")
	ErrDuplicateCode        = errors.New("reservation code already exists")
)

// ExceedsBalanceError reports a rejected payment together with the pending
// balance at the time of the check, so callers can retry with a corrected
// amount.
type ExceedsBalanceError struct {
	Amount  decimal.Decimal
	Pending decimal.Decimal
}

func (e ExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment of %s exceeds the pending balance of %s", e.Amount, e.Pending)
}
