package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentKindAdvance        PaymentKind = "advance"
	PaymentKindPartial        PaymentKind = "partial"
	PaymentKindFullSettlement PaymentKind = "full_settlement"
	PaymentKindRefund         PaymentKind = "refund"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusVoided    PaymentStatus = "voided"
)

type Payment struct {
	ID            int
	ReservationID int
	Amount        decimal.Decimal
	Kind          PaymentKind

	// Method is an opaque label ("cash", "transfer", ...) with no settlement
	// behavior attached.
	Method string

	Status         PaymentStatus
	Receipt        string
	IdempotencyKey *string
	Note           string
	PaidAt         time.Time
	VoidedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Balance is the derived monetary state of a reservation. It is computed
// fresh from the reservation total and the completed payments on file, and
// is never stored.
type Balance struct {
	Total       decimal.Decimal
	TotalPaid   decimal.Decimal
	Pending     decimal.Decimal
	PercentPaid decimal.Decimal
}

func NewBalance(total decimal.Decimal, payments []Payment) Balance {
	totalPaid := decimal.Zero

	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			totalPaid = totalPaid.Add(p.Amount)
		}
	}

	percentPaid := decimal.Zero
	if total.IsPositive() {
		percentPaid = totalPaid.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Balance{
		Total:       total,
		TotalPaid:   totalPaid,
		Pending:     total.Sub(totalPaid),
		PercentPaid: percentPaid,
	}
}

type PaymentFilters struct {
	Kind   PaymentKind
	Status PaymentStatus
	Method string
}

type PaymentRepository interface {
	// Create persists the payment after re-validating it against the pending
	// balance inside a single transaction that locks the reservation row.
	// It returns ErrRecordNotFound for an unknown reservation and an
	// ExceedsBalanceError when a non-refund payment would drive the pending
	// balance negative.
	Create(ctx context.Context, payment *Payment) error

	// Update rewrites the editable fields (amount, status, note) under the
	// same reservation row lock as Create, re-checking the pending balance
	// with the payment's own previous amount excluded.
	Update(ctx context.Context, payment *Payment) error

	GetById(ctx context.Context, id int) (*Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	GetAll(ctx context.Context, filters PaymentFilters, pagination Pagination) ([]Payment, *Metadata, error)
	GetAllByReservationId(ctx context.Context, reservationId int) ([]Payment, error)
	Void(ctx context.Context, id int) (*Payment, error)
	GetMonthlyStats(ctx context.Context) (*PaymentStats, error)
}

type PaymentStats struct {
	TotalCollected decimal.Decimal
	PaymentsToday  int
	PaymentsMonth  int
	AveragePayment decimal.Decimal
	ByMethod       map[string]int
	ByStatus       map[string]int
}
