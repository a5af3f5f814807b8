// Package pricing computes reservation totals from the service catalog.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/shopspring/decimal"
)

// Headcount bounds mirror what the booking form accepts.
const (
	MinHeadcount = 1
	MaxHeadcount = 500
)

var ErrInvalidHeadcount = fmt.Errorf("headcount must be between %d and %d", MinHeadcount, MaxHeadcount)

var (
	largeGroupFactor  = decimal.NewFromFloat(0.90)
	mediumGroupFactor = decimal.NewFromFloat(0.95)
)

// ComputeTotal prices a selection of services for the given headcount and
// returns the total rounded half-up to the nearest whole currency unit.
//
// Per-person services are multiplied by the headcount, fixed ones are added
// as-is, and a single volume discount tier is applied on top. Selected
// services that no longer exist or have been deactivated are skipped rather
// than failing the whole computation.
//
// The function is pure: it never writes anything. Callers own the cached
// reservation total and must call ComputeTotal again whenever the selection
// or the headcount changes.
func ComputeTotal(ctx context.Context, catalog domain.Catalog, serviceIDs []int, headcount int) (decimal.Decimal, error) {
	if headcount < MinHeadcount || headcount > MaxHeadcount {
		return decimal.Zero, ErrInvalidHeadcount
	}

	persons := decimal.NewFromInt(int64(headcount))
	subtotal := decimal.Zero
	seen := make(map[int]bool, len(serviceIDs))

	for _, id := range serviceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		service, err := catalog.GetById(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				continue
			}

			return decimal.Zero, err
		}

		if !service.Active {
			continue
		}

		if service.PricingMode == domain.PricingModePerPerson {
			subtotal = subtotal.Add(service.Price.Mul(persons))
		} else {
			subtotal = subtotal.Add(service.Price)
		}
	}

	return subtotal.Mul(discountFactor(headcount)).Round(0), nil
}

// discountFactor returns the volume discount multiplier. The tiers are
// mutually exclusive, highest threshold first.
func discountFactor(headcount int) decimal.Decimal {
	switch {
	case headcount > 100:
		return largeGroupFactor
	case headcount > 50:
		return mediumGroupFactor
	default:
		return decimal.NewFromInt(1)
	}
}
