package integration_test

import (
	"log/slog"
	"os"

	"github.com/CastleDev04/venue-reservation-system/internal/app"
	"github.com/CastleDev04/venue-reservation-system/internal/mailer"
	"github.com/CastleDev04/venue-reservation-system/internal/repository"
	appvalidator "github.com/CastleDev04/venue-reservation-system/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mockMailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	serviceRepo := repository.NewPostgresServiceRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mockMailer,
		serviceRepo,
		reservationRepo,
		paymentRepo,
	)

	return &TestApp{
		App:    application,
		DB:     db,
		Mailer: mockMailer,
	}, nil
}
