// Package ledger validates and records payments against reservations and
// derives their monetary state from the payment history.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	reservations domain.ReservationRepository
	payments     domain.PaymentRepository
	logger       *slog.Logger
}

func New(reservations domain.ReservationRepository, payments domain.PaymentRepository, logger *slog.Logger) *Ledger {
	return &Ledger{
		reservations: reservations,
		payments:     payments,
		logger:       logger,
	}
}

// PaymentInput carries the caller-supplied fields of a new ledger entry.
type PaymentInput struct {
	Amount         decimal.Decimal
	Kind           domain.PaymentKind
	Method         string
	Note           string
	IdempotencyKey *string
}

// Balance derives the monetary state of a reservation from its current total
// and the completed payments on file. It is computed fresh on every call;
// the total can change whenever the reservation is re-priced, so no derived
// value is ever trusted from a previous read.
func (l *Ledger) Balance(ctx context.Context, reservationId int) (*domain.Balance, error) {
	reservation, err := l.reservations.GetById(ctx, reservationId)
	if err != nil {
		return nil, err
	}

	payments, err := l.payments.GetAllByReservationId(ctx, reservationId)
	if err != nil {
		return nil, err
	}

	balance := domain.NewBalance(reservation.Total, payments)

	return &balance, nil
}

// RecordPayment validates a payment against the live pending balance and
// persists it with status completed.
//
// The validation here exists to produce precise errors; the authoritative
// check runs again inside the repository's insert transaction under a row
// lock on the reservation, so concurrent payments cannot jointly overshoot
// the balance.
func (l *Ledger) RecordPayment(ctx context.Context, reservationId int, input PaymentInput) (*domain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if input.IdempotencyKey != nil {
		existing, err := l.payments.GetByIdempotencyKey(ctx, *input.IdempotencyKey)
		if err == nil {
			return replay(existing, reservationId, input.Amount)
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
	}

	reservation, err := l.reservations.GetById(ctx, reservationId)
	if err != nil {
		return nil, err
	}

	if reservation.Status == domain.ReservationStatusCancelled && input.Kind != domain.PaymentKindRefund {
		return nil, domain.ErrReservationCancelled
	}

	history, err := l.payments.GetAllByReservationId(ctx, reservationId)
	if err != nil {
		return nil, err
	}

	balance := domain.NewBalance(reservation.Total, history)

	if input.Kind != domain.PaymentKindRefund && input.Amount.GreaterThan(balance.Pending) {
		return nil, domain.ExceedsBalanceError{Amount: input.Amount, Pending: balance.Pending}
	}

	payment := &domain.Payment{
		ReservationID:  reservationId,
		Amount:         input.Amount,
		Kind:           input.Kind,
		Method:         input.Method,
		Status:         domain.PaymentStatusCompleted,
		Receipt:        NewReceipt(),
		IdempotencyKey: input.IdempotencyKey,
		Note:           input.Note,
		PaidAt:         time.Now(),
	}

	if payment.Kind == "" {
		payment.Kind = domain.PaymentKindPartial
	}
	if payment.Method == "" {
		payment.Method = "cash"
	}

	err = l.payments.Create(ctx, payment)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) && input.IdempotencyKey != nil {
			existing, getErr := l.payments.GetByIdempotencyKey(ctx, *input.IdempotencyKey)
			if getErr != nil {
				return nil, getErr
			}

			return replay(existing, reservationId, input.Amount)
		}

		return nil, err
	}

	l.logger.Info("payment recorded",
		"reservation_id", reservationId,
		"receipt", payment.Receipt,
		"amount", payment.Amount,
		"kind", payment.Kind,
	)

	return payment, nil
}

// replay guards the idempotent retry path. A key is only honored when the
// stored payment matches the retried request; reusing a key with a different
// reservation or amount is a client error, not a retry.
func replay(existing *domain.Payment, reservationId int, amount decimal.Decimal) (*domain.Payment, error) {
	if existing.ReservationID != reservationId || !existing.Amount.Equal(amount) {
		return nil, domain.ErrIdempotencyKeyReuse
	}

	return existing, nil
}

// RecordFullSettlement pays off the entire pending balance in a single
// entry. The reservation's fully_paid flag is flipped afterwards as a
// best-effort denormalized cache; Balance stays the source of truth even
// when the flag update fails.
func (l *Ledger) RecordFullSettlement(ctx context.Context, reservationId int, method string) (*domain.Payment, error) {
	balance, err := l.Balance(ctx, reservationId)
	if err != nil {
		return nil, err
	}

	if !balance.Pending.IsPositive() {
		return nil, domain.ErrAlreadySettled
	}

	payment, err := l.RecordPayment(ctx, reservationId, PaymentInput{
		Amount: balance.Pending,
		Kind:   domain.PaymentKindFullSettlement,
		Method: method,
		Note:   "Full settlement of the pending balance",
	})
	if err != nil {
		return nil, err
	}

	err = l.reservations.MarkFullyPaid(ctx, reservationId)
	if err != nil {
		l.logger.Warn("failed to update fully paid flag", "reservation_id", reservationId, "error", err)
	}

	return payment, nil
}

// RecordAdvance registers a partial advance. A zero amount defaults to the
// current pending balance. The reservation's advance_total cache is
// accumulated best-effort after the payment is on file.
func (l *Ledger) RecordAdvance(ctx context.Context, reservationId int, amount decimal.Decimal, method string) (*domain.Payment, error) {
	if amount.IsZero() {
		balance, err := l.Balance(ctx, reservationId)
		if err != nil {
			return nil, err
		}

		amount = balance.Pending
	}

	payment, err := l.RecordPayment(ctx, reservationId, PaymentInput{
		Amount: amount,
		Kind:   domain.PaymentKindAdvance,
		Method: method,
		Note:   "Advance payment",
	})
	if err != nil {
		return nil, err
	}

	err = l.reservations.AddToAdvanceTotal(ctx, reservationId, payment.Amount)
	if err != nil {
		l.logger.Warn("failed to accumulate advance total", "reservation_id", reservationId, "error", err)
	}

	return payment, nil
}

// PaymentUpdate carries the editable fields of an existing ledger entry.
// Nil fields are left unchanged.
type PaymentUpdate struct {
	Amount *decimal.Decimal
	Status *domain.PaymentStatus
	Note   *string
}

// UpdatePayment corrects the amount or transitions the status of an
// existing entry. Voided entries are immutable; voiding itself goes through
// VoidPayment. When the updated entry still counts toward the balance, the
// repository re-checks the new amount against the pending balance under the
// reservation row lock.
func (l *Ledger) UpdatePayment(ctx context.Context, paymentId int, update PaymentUpdate) (*domain.Payment, error) {
	payment, err := l.payments.GetById(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	if payment.Status == domain.PaymentStatusVoided {
		return nil, domain.ErrPaymentVoided
	}

	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}

		payment.Amount = *update.Amount
	}
	if update.Status != nil {
		payment.Status = *update.Status
	}
	if update.Note != nil {
		payment.Note = *update.Note
	}

	err = l.payments.Update(ctx, payment)
	if err != nil {
		return nil, err
	}

	l.logger.Info("payment updated",
		"payment_id", payment.ID,
		"receipt", payment.Receipt,
		"amount", payment.Amount,
		"status", payment.Status,
	)

	return payment, nil
}

// ListPayments returns a filtered page of the whole ledger, across
// reservations.
func (l *Ledger) ListPayments(ctx context.Context, filters domain.PaymentFilters, pagination domain.Pagination) ([]domain.Payment, *domain.Metadata, error) {
	return l.payments.GetAll(ctx, filters, pagination)
}

// VoidPayment removes a ledger entry from all future balance computations.
// The row is kept with status voided for audit; nothing is hard-deleted.
func (l *Ledger) VoidPayment(ctx context.Context, paymentId int) (*domain.Payment, error) {
	payment, err := l.payments.Void(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	l.logger.Info("payment voided", "payment_id", paymentId, "receipt", payment.Receipt)

	return payment, nil
}

// Payments returns the payment history of a reservation, newest first.
func (l *Ledger) Payments(ctx context.Context, reservationId int) ([]domain.Payment, error) {
	return l.payments.GetAllByReservationId(ctx, reservationId)
}

// NewReceipt generates a receipt code in the PAY-XXXXXXXX format.
func NewReceipt() string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
