package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(otelchi.Middleware("venue-reservation-api", otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)

	r.Route("/services", func(r chi.Router) {
		r.Get("/", app.ListServices)
		r.Post("/", app.CreateService)
		r.Get("/{serviceId}", app.GetService)
		r.Patch("/{serviceId}", app.UpdateService)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", app.ListReservations)
		r.Post("/", app.CreateReservation)

		r.Route("/{reservationId}", func(r chi.Router) {
			r.Get("/", app.GetReservation)
			r.Patch("/", app.UpdateReservation)
			r.Post("/status", app.ToggleReservationStatus)
			r.Post("/cancel", app.CancelReservation)
			r.Get("/balance", app.GetReservationBalance)
			r.Get("/payments", app.ListReservationPayments)
			r.Post("/payments", app.RecordPayment)
			r.Post("/payments/advance", app.RecordAdvance)
			r.Post("/payments/settlement", app.RecordSettlement)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/", app.ListPayments)
		r.Get("/{paymentId}", app.GetPayment)
		r.Patch("/{paymentId}", app.UpdatePayment)
		r.Delete("/{paymentId}", app.VoidPayment)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/reservations", app.GetReservationStats)
		r.Get("/payments", app.GetPaymentStats)
	})

	return r
}
