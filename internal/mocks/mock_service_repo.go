package mocks

import (
	"context"

	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockServiceRepo struct {
	mock.Mock
	domain.ServiceRepository
}

func (m *MockServiceRepo) GetById(ctx context.Context, id int) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepo) GetAll(
	ctx context.Context,
	filters domain.ServiceFilters,
	pagination domain.Pagination) ([]*domain.Service, *domain.Metadata, error) {

	args := m.Called(ctx, filters, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*domain.Service), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockServiceRepo) Create(ctx context.Context, service *domain.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepo) Update(ctx context.Context, service *domain.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}
