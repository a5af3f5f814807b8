package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID            int
	Code          string
	CustomerName  string
	CustomerEmail string
	EventType     string
	EventDate     time.Time
	Headcount     int
	ServiceIDs    []int

	// Total is a cache of the pricing engine's output for the current
	// selection and headcount. Callers must recompute it on every mutation
	// of either; it is never authoritative on its own.
	Total decimal.Decimal

	// AdvanceTotal and FullyPaid are denormalized ledger caches. The balance
	// derived from the payment history is the source of truth.
	AdvanceTotal decimal.Decimal
	FullyPaid    bool

	Status    ReservationStatus
	Notes     string
	Version   int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewReservationCode generates a human-facing reservation code in the
// RES-NNNNNN format.
func NewReservationCode() string {
	return fmt.Sprintf("RES-%06d", time.Now().UnixMilli()%1_000_000)
}

// ToggleStatus flips a reservation between pending and confirmed. Cancelled
// is terminal and is never entered or exited through the toggle.
func (r *Reservation) ToggleStatus() error {
	switch r.Status {
	case ReservationStatusPending:
		r.Status = ReservationStatusConfirmed
	case ReservationStatusConfirmed:
		r.Status = ReservationStatusPending
	default:
		return ErrReservationCancelled
	}

	return nil
}

type ReservationFilters struct {
	Status    ReservationStatus
	EventType string
	DateFrom  *time.Time
	DateTo    *time.Time
	Term      string
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetById(ctx context.Context, id int) (*Reservation, error)
	GetAll(ctx context.Context, filters ReservationFilters, pagination Pagination) ([]*Reservation, *Metadata, error)
	Update(ctx context.Context, reservation *Reservation) error
	SetStatus(ctx context.Context, id int, status ReservationStatus) error
	MarkFullyPaid(ctx context.Context, id int) error
	AddToAdvanceTotal(ctx context.Context, id int, amount decimal.Decimal) error
	GetMonthlyStats(ctx context.Context) (*ReservationStats, error)
}

type ReservationStats struct {
	Total            int
	Confirmed        int
	Pending          int
	MonthlyRevenue   decimal.Decimal
	ConfirmationRate int
}
