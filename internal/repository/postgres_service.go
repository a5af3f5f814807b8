package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresServiceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresServiceRepository(db *pgxpool.Pool) *PostgresServiceRepository {
	return &PostgresServiceRepository{
		db: db,
	}
}

func (p *PostgresServiceRepository) GetById(ctx context.Context, id int) (*domain.Service, error) {
	query := `
		SELECT id, name, description, price, pricing_mode, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var service domain.Service

	err := p.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.PricingMode,
		&service.Active,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &service, nil
}

func (p *PostgresServiceRepository) GetAll(
	ctx context.Context,
	filters domain.ServiceFilters,
	pagination domain.Pagination) ([]*domain.Service, *domain.Metadata, error) {

	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, description, price, pricing_mode, active, created_at, updated_at
		FROM services
		WHERE ($1 = '' OR pricing_mode = $1)
		AND ($2::boolean IS NULL OR active = $2)
		AND ($3 = '' OR name ILIKE '%%' || $3 || '%%')
		ORDER BY %s %s
		LIMIT $4 OFFSET $5`, pagination.SortColumn(), pagination.SortDirection())

	rows, err := p.db.Query(ctx, query,
		string(filters.PricingMode),
		filters.Active,
		filters.Term,
		pagination.Limit(),
		pagination.Offset(),
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	services := []*domain.Service{}

	for rows.Next() {
		var service domain.Service

		err := rows.Scan(
			&totalRecords,
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.PricingMode,
			&service.Active,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		services = append(services, &service)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return services, metadata, nil
}

func (p *PostgresServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (name, description, price, pricing_mode, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return p.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.Price,
		service.PricingMode,
		service.Active,
	).Scan(&service.ID, &service.CreatedAt)
}

func (p *PostgresServiceRepository) Update(ctx context.Context, service *domain.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, price = $3, pricing_mode = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := p.db.QueryRow(ctx, query,
		service.Name,
		service.Description,
		service.Price,
		service.PricingMode,
		service.Active,
		service.ID,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}
