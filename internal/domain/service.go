package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingModeFixed     PricingMode = "fixed"
	PricingModePerPerson PricingMode = "per_person"
)

type Service struct {
	ID          int
	Name        string
	Description string
	Price       decimal.Decimal
	PricingMode PricingMode
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type ServiceFilters struct {
	Active      *bool
	PricingMode PricingMode
	Term        string
}

// Catalog is the read-only view of the service catalog used while pricing a
// reservation. A missing service is reported as ErrRecordNotFound.
type Catalog interface {
	GetById(ctx context.Context, id int) (*Service, error)
}

type ServiceRepository interface {
	Catalog
	GetAll(ctx context.Context, filters ServiceFilters, pagination Pagination) ([]*Service, *Metadata, error)
	Create(ctx context.Context, service *Service) error
	Update(ctx context.Context, service *Service) error
}
