package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/CastleDev04/venue-reservation-system/api"
	"github.com/redis/go-redis/v9"
)

const statsCacheTTL = time.Minute

func (app *Application) GetReservationStats(w http.ResponseWriter, r *http.Request) {
	app.cachedStats(w, r, "stats:reservations", func(ctx context.Context) (any, error) {
		stats, err := app.reservationRepo.GetMonthlyStats(ctx)
		if err != nil {
			return nil, err
		}

		return api.ReservationStatsResponse{
			Total:            stats.Total,
			Confirmed:        stats.Confirmed,
			Pending:          stats.Pending,
			MonthlyRevenue:   stats.MonthlyRevenue,
			ConfirmationRate: stats.ConfirmationRate,
		}, nil
	})
}

func (app *Application) GetPaymentStats(w http.ResponseWriter, r *http.Request) {
	app.cachedStats(w, r, "stats:payments", func(ctx context.Context) (any, error) {
		stats, err := app.paymentRepo.GetMonthlyStats(ctx)
		if err != nil {
			return nil, err
		}

		return api.PaymentStatsResponse{
			TotalCollected: stats.TotalCollected,
			PaymentsToday:  stats.PaymentsToday,
			PaymentsMonth:  stats.PaymentsMonth,
			AveragePayment: stats.AveragePayment,
			ByMethod:       stats.ByMethod,
			ByStatus:       stats.ByStatus,
		}, nil
	})
}

// cachedStats serves the response from Redis when a fresh copy is cached,
// falling back to the loader otherwise. Cache failures degrade to a direct
// read instead of failing the request.
func (app *Application) cachedStats(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) {
	ctx := r.Context()

	cached, err := app.redis.Get(ctx, key).Bytes()
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}
	if !errors.Is(err, redis.Nil) {
		app.logger.Warn("stats cache read failed", "key", key, "error", err)
	}

	resp, err := load(ctx)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	js, err := json.Marshal(resp)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	js = append(js, '\n')

	err = app.redis.Set(ctx, key, js, statsCacheTTL).Err()
	if err != nil {
		app.logger.Warn("stats cache write failed", "key", key, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
