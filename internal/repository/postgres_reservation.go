package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (
				code,
				customer_name,
				customer_email,
				event_type,
				event_date,
				headcount,
				total,
				status,
				notes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, advance_total, fully_paid, version, created_at
		`

		err := tx.QueryRow(ctx, query,
			reservation.Code,
			reservation.CustomerName,
			reservation.CustomerEmail,
			reservation.EventType,
			reservation.EventDate,
			reservation.Headcount,
			reservation.Total,
			reservation.Status,
			reservation.Notes,
		).Scan(
			&reservation.ID,
			&reservation.AdvanceTotal,
			&reservation.FullyPaid,
			&reservation.Version,
			&reservation.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation &&
				pgErr.ConstraintName == "reservations_code_key" {
				return domain.ErrDuplicateCode
			}

			return err
		}

		return copySelection(ctx, tx, reservation.ID, reservation.ServiceIDs)
	})
}

func copySelection(ctx context.Context, tx pgx.Tx, reservationId int, serviceIds []int) error {
	if len(serviceIds) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(serviceIds))
	for _, serviceId := range serviceIds {
		rows = append(rows, []any{reservationId, serviceId})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"reservation_services"},
		[]string{"reservation_id", "service_id"},
		pgx.CopyFromRows(rows),
	)

	return err
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `
		SELECT
			id,
			code,
			customer_name,
			customer_email,
			event_type,
			event_date,
			headcount,
			total,
			advance_total,
			fully_paid,
			status,
			notes,
			version,
			created_at,
			updated_at
		FROM reservations
		WHERE id = $1
	`

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.Code,
		&reservation.CustomerName,
		&reservation.CustomerEmail,
		&reservation.EventType,
		&reservation.EventDate,
		&reservation.Headcount,
		&reservation.Total,
		&reservation.AdvanceTotal,
		&reservation.FullyPaid,
		&reservation.Status,
		&reservation.Notes,
		&reservation.Version,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	serviceIds, err := p.retrieveSelection(ctx, id)
	if err != nil {
		return nil, err
	}

	reservation.ServiceIDs = serviceIds

	return &reservation, nil
}

func (p *PostgresReservationRepository) retrieveSelection(ctx context.Context, reservationId int) ([]int, error) {
	query := `
		SELECT service_id
		FROM reservation_services
		WHERE reservation_id = $1
		ORDER BY service_id
	`

	rows, err := p.db.Query(ctx, query, reservationId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	serviceIds := make([]int, 0)

	for rows.Next() {
		var serviceId int

		if err := rows.Scan(&serviceId); err != nil {
			return nil, err
		}

		serviceIds = append(serviceIds, serviceId)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return serviceIds, nil
}

func (p *PostgresReservationRepository) GetAll(
	ctx context.Context,
	filters domain.ReservationFilters,
	pagination domain.Pagination) ([]*domain.Reservation, *domain.Metadata, error) {

	query := fmt.Sprintf(`
		SELECT
			count(*) OVER(),
			id,
			code,
			customer_name,
			customer_email,
			event_type,
			event_date,
			headcount,
			total,
			advance_total,
			fully_paid,
			status,
			notes,
			version,
			created_at,
			updated_at
		FROM reservations
		WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR event_type = $2)
		AND ($3::date IS NULL OR event_date >= $3)
		AND ($4::date IS NULL OR event_date <= $4)
		AND ($5 = '' OR code ILIKE '%%' || $5 || '%%' OR customer_name ILIKE '%%' || $5 || '%%')
		ORDER BY %s %s
		LIMIT $6 OFFSET $7`, pagination.SortColumn(), pagination.SortDirection())

	rows, err := p.db.Query(ctx, query,
		string(filters.Status),
		filters.EventType,
		filters.DateFrom,
		filters.DateTo,
		filters.Term,
		pagination.Limit(),
		pagination.Offset(),
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	reservations := []*domain.Reservation{}

	for rows.Next() {
		var reservation domain.Reservation

		err := rows.Scan(
			&totalRecords,
			&reservation.ID,
			&reservation.Code,
			&reservation.CustomerName,
			&reservation.CustomerEmail,
			&reservation.EventType,
			&reservation.EventDate,
			&reservation.Headcount,
			&reservation.Total,
			&reservation.AdvanceTotal,
			&reservation.FullyPaid,
			&reservation.Status,
			&reservation.Notes,
			&reservation.Version,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		reservations = append(reservations, &reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return reservations, metadata, nil
}

// Update rewrites the reservation and its service selection in one
// transaction, guarded by an optimistic version check.
func (p *PostgresReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET
				customer_name = $1,
				customer_email = $2,
				event_type = $3,
				event_date = $4,
				headcount = $5,
				total = $6,
				status = $7,
				notes = $8,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $9 AND version = $10
			RETURNING version, updated_at
		`

		err := tx.QueryRow(ctx, query,
			reservation.CustomerName,
			reservation.CustomerEmail,
			reservation.EventType,
			reservation.EventDate,
			reservation.Headcount,
			reservation.Total,
			reservation.Status,
			reservation.Notes,
			reservation.ID,
			reservation.Version,
		).Scan(&reservation.Version, &reservation.UpdatedAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEditConflict
			}

			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM reservation_services WHERE reservation_id = $1`, reservation.ID)
		if err != nil {
			return err
		}

		return copySelection(ctx, tx, reservation.ID, reservation.ServiceIDs)
	})
}

func (p *PostgresReservationRepository) SetStatus(ctx context.Context, id int, status domain.ReservationStatus) error {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) MarkFullyPaid(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET fully_paid = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) AddToAdvanceTotal(ctx context.Context, id int, amount decimal.Decimal) error {
	query := `
		UPDATE reservations
		SET advance_total = advance_total + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := p.db.Exec(ctx, query, amount, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) GetMonthlyStats(ctx context.Context) (*domain.ReservationStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'confirmed'),
			count(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(total) FILTER (WHERE status = 'confirmed'), 0)
		FROM reservations
		WHERE created_at >= date_trunc('month', NOW())
	`

	var stats domain.ReservationStats

	err := p.db.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Confirmed,
		&stats.Pending,
		&stats.MonthlyRevenue,
	)
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.ConfirmationRate = stats.Confirmed * 100 / stats.Total
	}

	return &stats, nil
}
