// Package api holds the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type CreateServiceRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	PricingMode string          `json:"pricingMode" validate:"required,oneof=fixed per_person"`
	Active      *bool           `json:"active"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	PricingMode *string          `json:"pricingMode" validate:"omitempty,oneof=fixed per_person"`
	Active      *bool            `json:"active"`
}

type ServiceResponse struct {
	Id          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PricingMode string          `json:"pricingMode"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ServicesResponse struct {
	Services []ServiceResponse `json:"services"`
	Metadata Metadata          `json:"metadata"`
}

type ListServicesParams struct {
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
	Sort     string `validate:"oneof=name -name price -price created_at -created_at"`
	Active   string `validate:"omitempty,oneof=true false"`
	Mode     string `validate:"omitempty,oneof=fixed per_person"`
	Term     string `validate:"max=200"`
}

type CreateReservationRequest struct {
	CustomerName  string    `json:"customerName" validate:"required,max=200"`
	CustomerEmail string    `json:"customerEmail" validate:"required,email"`
	EventType     string    `json:"eventType" validate:"max=100"`
	EventDate     time.Time `json:"eventDate" validate:"required"`
	Headcount     int       `json:"headcount" validate:"required,min=1,max=500"`
	ServiceIds    []int     `json:"serviceIds" validate:"dive,min=1"`
	Notes         string    `json:"notes" validate:"max=2000"`
}

type UpdateReservationRequest struct {
	CustomerName  *string    `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail *string    `json:"customerEmail" validate:"omitempty,email"`
	EventType     *string    `json:"eventType" validate:"omitempty,max=100"`
	EventDate     *time.Time `json:"eventDate"`
	Headcount     *int       `json:"headcount" validate:"omitempty,min=1,max=500"`
	ServiceIds    *[]int     `json:"serviceIds" validate:"omitempty,dive,min=1"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
}

type ReservationResponse struct {
	Id            int             `json:"id"`
	Code          string          `json:"code"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	EventType     string          `json:"eventType"`
	EventDate     time.Time       `json:"eventDate"`
	Headcount     int             `json:"headcount"`
	ServiceIds    []int           `json:"serviceIds"`
	Total         decimal.Decimal `json:"total"`
	AdvanceTotal  decimal.Decimal `json:"advanceTotal"`
	FullyPaid     bool            `json:"fullyPaid"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Metadata     Metadata              `json:"metadata"`
}

type ListReservationsParams struct {
	Page      int    `validate:"min=1"`
	PageSize  int    `validate:"min=1,max=100"`
	Sort      string `validate:"oneof=created_at -created_at event_date -event_date total -total"`
	Status    string `validate:"omitempty,oneof=pending confirmed cancelled"`
	EventType string `validate:"max=100"`
	Term      string `validate:"max=200"`
}

type BalanceResponse struct {
	Total       decimal.Decimal   `json:"total"`
	TotalPaid   decimal.Decimal   `json:"totalPaid"`
	Pending     decimal.Decimal   `json:"pending"`
	PercentPaid decimal.Decimal   `json:"percentPaid"`
	Payments    []PaymentResponse `json:"payments"`
}

type RecordPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Kind           string          `json:"kind" validate:"omitempty,oneof=advance partial full_settlement refund"`
	Method         string          `json:"method" validate:"max=100"`
	Note           string          `json:"note" validate:"max=2000"`
	IdempotencyKey *string         `json:"idempotencyKey" validate:"omitempty,max=100"`
}

type RecordAdvanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"max=100"`
}

type RecordSettlementRequest struct {
	Method string `json:"method" validate:"max=100"`
}

type UpdatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Status *string          `json:"status" validate:"omitempty,oneof=completed pending failed refunded"`
	Note   *string          `json:"note" validate:"omitempty,max=2000"`
}

type ListPaymentsParams struct {
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
	Sort     string `validate:"oneof=paid_at -paid_at amount -amount created_at -created_at"`
	Kind     string `validate:"omitempty,oneof=advance partial full_settlement refund"`
	Status   string `validate:"omitempty,oneof=completed pending failed refunded voided"`
	Method   string `validate:"max=100"`
}

type PaymentResponse struct {
	Id            int             `json:"id"`
	ReservationId int             `json:"reservationId"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Receipt       string          `json:"receipt"`
	Note          string          `json:"note"`
	PaidAt        time.Time       `json:"paidAt"`
	VoidedAt      *time.Time      `json:"voidedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Metadata Metadata          `json:"metadata"`
}

type PaymentStatsResponse struct {
	TotalCollected decimal.Decimal `json:"totalCollected"`
	PaymentsToday  int             `json:"paymentsToday"`
	PaymentsMonth  int             `json:"paymentsMonth"`
	AveragePayment decimal.Decimal `json:"averagePayment"`
	ByMethod       map[string]int  `json:"byMethod"`
	ByStatus       map[string]int  `json:"byStatus"`
}

type ReservationStatsResponse struct {
	Total            int             `json:"total"`
	Confirmed        int             `json:"confirmed"`
	Pending          int             `json:"pending"`
	MonthlyRevenue   decimal.Decimal `json:"monthlyRevenue"`
	ConfirmationRate int             `json:"confirmationRate"`
}
