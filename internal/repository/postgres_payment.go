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

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// Create inserts the payment after re-validating it against the pending
// balance. The reservation row is locked for the duration of the
// transaction, so concurrent inserts against the same reservation serialize
// here and cannot jointly overshoot the balance.
func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var total decimal.Decimal

		err := tx.QueryRow(ctx,
			`SELECT total FROM reservations WHERE id = $1 FOR UPDATE`,
			payment.ReservationID,
		).Scan(&total)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if payment.Kind != domain.PaymentKindRefund {
			var totalPaid decimal.Decimal

			err = tx.QueryRow(ctx,
				`SELECT COALESCE(SUM(amount), 0)
				FROM payments
				WHERE reservation_id = $1 AND status = 'completed'`,
				payment.ReservationID,
			).Scan(&totalPaid)

			if err != nil {
				return err
			}

			pending := total.Sub(totalPaid)
			if payment.Amount.GreaterThan(pending) {
				return domain.ExceedsBalanceError{Amount: payment.Amount, Pending: pending}
			}
		}

		query := `
			INSERT INTO payments (
				reservation_id,
				amount,
				kind,
				method,
				status,
				receipt,
				idempotency_key,
				note,
				paid_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`

		err = tx.QueryRow(ctx, query,
			payment.ReservationID,
			payment.Amount,
			payment.Kind,
			payment.Method,
			payment.Status,
			payment.Receipt,
			payment.IdempotencyKey,
			payment.Note,
			payment.PaidAt,
		).Scan(&payment.ID, &payment.CreatedAt)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation &&
				pgErr.ConstraintName == "payments_idempotency_key_idx" {
				return domain.ErrDuplicatePayment
			}

			return err
		}

		return nil
	})
}

// Update rewrites the editable fields of a payment. Like Create, it locks
// the reservation row and re-checks the pending balance, this time with the
// payment's own previous amount excluded, so an amount correction cannot
// overshoot either.
func (p *PostgresPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var total decimal.Decimal

		err := tx.QueryRow(ctx,
			`SELECT total FROM reservations WHERE id = $1 FOR UPDATE`,
			payment.ReservationID,
		).Scan(&total)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if payment.Status == domain.PaymentStatusCompleted && payment.Kind != domain.PaymentKindRefund {
			var totalPaid decimal.Decimal

			err = tx.QueryRow(ctx,
				`SELECT COALESCE(SUM(amount), 0)
				FROM payments
				WHERE reservation_id = $1 AND status = 'completed' AND id <> $2`,
				payment.ReservationID,
				payment.ID,
			).Scan(&totalPaid)

			if err != nil {
				return err
			}

			pending := total.Sub(totalPaid)
			if payment.Amount.GreaterThan(pending) {
				return domain.ExceedsBalanceError{Amount: payment.Amount, Pending: pending}
			}
		}

		query := `
			UPDATE payments
			SET amount = $1, status = $2, note = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at
		`

		err = tx.QueryRow(ctx, query,
			payment.Amount,
			payment.Status,
			payment.Note,
			payment.ID,
		).Scan(&payment.UpdatedAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		return nil
	})
}

func (p *PostgresPaymentRepository) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	return p.getOne(ctx, `WHERE id = $1`, id)
}

func (p *PostgresPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return p.getOne(ctx, `WHERE idempotency_key = $1`, key)
}

func (p *PostgresPaymentRepository) getOne(ctx context.Context, where string, arg any) (*domain.Payment, error) {
	query := `
		SELECT
			id,
			reservation_id,
			amount,
			kind,
			method,
			status,
			receipt,
			idempotency_key,
			note,
			paid_at,
			voided_at,
			created_at,
			updated_at
		FROM payments
	` + where

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Amount,
		&payment.Kind,
		&payment.Method,
		&payment.Status,
		&payment.Receipt,
		&payment.IdempotencyKey,
		&payment.Note,
		&payment.PaidAt,
		&payment.VoidedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) GetAll(
	ctx context.Context,
	filters domain.PaymentFilters,
	pagination domain.Pagination) ([]domain.Payment, *domain.Metadata, error) {

	query := fmt.Sprintf(`
		SELECT
			count(*) OVER(),
			id,
			reservation_id,
			amount,
			kind,
			method,
			status,
			receipt,
			idempotency_key,
			note,
			paid_at,
			voided_at,
			created_at,
			updated_at
		FROM payments
		WHERE ($1 = '' OR kind = $1)
		AND ($2 = '' OR status = $2)
		AND ($3 = '' OR method = $3)
		ORDER BY %s %s
		LIMIT $4 OFFSET $5`, pagination.SortColumn(), pagination.SortDirection())

	rows, err := p.db.Query(ctx, query,
		string(filters.Kind),
		string(filters.Status),
		filters.Method,
		pagination.Limit(),
		pagination.Offset(),
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	payments := make([]domain.Payment, 0)

	for rows.Next() {
		var payment domain.Payment

		err := rows.Scan(
			&totalRecords,
			&payment.ID,
			&payment.ReservationID,
			&payment.Amount,
			&payment.Kind,
			&payment.Method,
			&payment.Status,
			&payment.Receipt,
			&payment.IdempotencyKey,
			&payment.Note,
			&payment.PaidAt,
			&payment.VoidedAt,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return payments, metadata, nil
}

func (p *PostgresPaymentRepository) GetAllByReservationId(ctx context.Context, reservationId int) ([]domain.Payment, error) {
	query := `
		SELECT
			id,
			reservation_id,
			amount,
			kind,
			method,
			status,
			receipt,
			idempotency_key,
			note,
			paid_at,
			voided_at,
			created_at,
			updated_at
		FROM payments
		WHERE reservation_id = $1
		ORDER BY paid_at DESC
	`

	rows, err := p.db.Query(ctx, query, reservationId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)

	for rows.Next() {
		var payment domain.Payment

		err := rows.Scan(
			&payment.ID,
			&payment.ReservationID,
			&payment.Amount,
			&payment.Kind,
			&payment.Method,
			&payment.Status,
			&payment.Receipt,
			&payment.IdempotencyKey,
			&payment.Note,
			&payment.PaidAt,
			&payment.VoidedAt,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// Void retires a ledger entry without deleting the row, so past balances
// stay auditable.
func (p *PostgresPaymentRepository) Void(ctx context.Context, id int) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'voided', voided_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING
			id,
			reservation_id,
			amount,
			kind,
			method,
			status,
			receipt,
			idempotency_key,
			note,
			paid_at,
			voided_at,
			created_at,
			updated_at
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Amount,
		&payment.Kind,
		&payment.Method,
		&payment.Status,
		&payment.Receipt,
		&payment.IdempotencyKey,
		&payment.Note,
		&payment.PaidAt,
		&payment.VoidedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) GetMonthlyStats(ctx context.Context) (*domain.PaymentStats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0),
			count(*),
			count(*) FILTER (WHERE paid_at::date = CURRENT_DATE)
		FROM payments
		WHERE paid_at >= date_trunc('month', NOW())
	`

	stats := domain.PaymentStats{
		ByMethod: make(map[string]int),
		ByStatus: make(map[string]int),
	}

	err := p.db.QueryRow(ctx, query).Scan(
		&stats.TotalCollected,
		&stats.PaymentsMonth,
		&stats.PaymentsToday,
	)
	if err != nil {
		return nil, err
	}

	if stats.PaymentsMonth > 0 {
		stats.AveragePayment = stats.TotalCollected.
			Div(decimal.NewFromInt(int64(stats.PaymentsMonth))).
			Round(2)
	}

	groupQuery := `
		SELECT method, status, count(*)
		FROM payments
		WHERE paid_at >= date_trunc('month', NOW())
		GROUP BY method, status
	`

	rows, err := p.db.Query(ctx, groupQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var method, status string
		var count int

		if err := rows.Scan(&method, &status, &count); err != nil {
			return nil, err
		}

		stats.ByMethod[method] += count
		stats.ByStatus[status] += count
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &stats, nil
}
