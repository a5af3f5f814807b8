package app

import (
	"errors"
	"net/http"

	"github.com/CastleDev04/venue-reservation-system/api"
	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/CastleDev04/venue-reservation-system/internal/ledger"
)

func (app *Application) GetReservationBalance(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	balance, err := app.ledger.Balance(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	payments, err := app.ledger.Payments(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BalanceResponse{
		Total:       balance.Total,
		TotalPaid:   balance.TotalPaid,
		Pending:     balance.Pending,
		PercentPaid: balance.PercentPaid,
		Payments:    toPaymentResponses(payments),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListReservationPayments(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	payments, err := app.ledger.Payments(r.Context(), reservation.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentsResponse{Payments: toPaymentResponses(payments)}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.RecordPaymentRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, err := app.ledger.RecordPayment(r.Context(), id, ledger.PaymentInput{
		Amount:         input.Amount,
		Kind:           domain.PaymentKind(input.Kind),
		Method:         input.Method,
		Note:           input.Note,
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		app.paymentErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RecordAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.RecordAdvanceRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, err := app.ledger.RecordAdvance(r.Context(), id, input.Amount, input.Method)
	if err != nil {
		app.paymentErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	var input api.RecordSettlementRequest

	if r.ContentLength != 0 {
		err := app.readJSON(w, r, &input)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}

		err = app.validator.Struct(input)
		if err != nil {
			app.failedValidationResponse(w, r, err)
			return
		}
	}

	payment, err := app.ledger.RecordFullSettlement(r.Context(), reservation.ID, input.Method)
	if err != nil {
		app.paymentErrorResponse(w, r, err)
		return
	}

	app.background(func() {
		data := map[string]any{
			"customerName":    reservation.CustomerName,
			"reservationCode": reservation.Code,
			"receipt":         payment.Receipt,
			"amount":          payment.Amount.StringFixed(2),
			"pending":         "0.00",
		}

		err := app.mailer.Send(reservation.CustomerEmail, "payment_receipt.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send receipt email", "reservation_id", reservation.ID, "error", err)
		}
	})

	err = app.writeJSON(w, http.StatusCreated, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListPayments(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	params := api.ListPaymentsParams{
		Sort:   app.readString(qs, "sort", "-paid_at"),
		Kind:   app.readString(qs, "kind", ""),
		Status: app.readString(qs, "status", ""),
		Method: app.readString(qs, "method", ""),
	}

	var err error

	params.Page, err = app.readInt(qs, "page", 1)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params.PageSize, err = app.readInt(qs, "pageSize", 20)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	filters := domain.PaymentFilters{
		Kind:   domain.PaymentKind(params.Kind),
		Status: domain.PaymentStatus(params.Status),
		Method: params.Method,
	}

	pagination := domain.Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
		Sort:     params.Sort,
	}

	payments, metadata, err := app.ledger.ListPayments(r.Context(), filters, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentListResponse{
		Payments: toPaymentResponses(payments),
		Metadata: toMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "paymentId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.paymentRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "paymentId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.UpdatePaymentRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	update := ledger.PaymentUpdate{
		Amount: input.Amount,
		Note:   input.Note,
	}
	if input.Status != nil {
		status := domain.PaymentStatus(*input.Status)
		update.Status = &status
	}

	payment, err := app.ledger.UpdatePayment(r.Context(), id, update)
	if err != nil {
		app.paymentErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) VoidPayment(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "paymentId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.ledger.VoidPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) paymentErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var exceedsErr domain.ExceedsBalanceError

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrInvalidAmount):
		app.badRequestResponse(w, r, errors.New("amount must be greater than zero"))
	case errors.Is(err, domain.ErrReservationCancelled):
		app.conflictResponse(w, r, "Cancelled reservations only accept refunds")
	case errors.Is(err, domain.ErrAlreadySettled):
		app.conflictResponse(w, r, "Reservation is already fully settled")
	case errors.Is(err, domain.ErrIdempotencyKeyReuse):
		app.conflictResponse(w, r, "The idempotency key was already used for a different payment")
	case errors.Is(err, domain.ErrPaymentVoided):
		app.conflictResponse(w, r, "Voided payments cannot be edited")
	case errors.As(err, &exceedsErr):
		app.conflictResponse(w, r, exceedsErr.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toPaymentResponse(payment *domain.Payment) api.PaymentResponse {
	return api.PaymentResponse{
		Id:            payment.ID,
		ReservationId: payment.ReservationID,
		Amount:        payment.Amount,
		Kind:          string(payment.Kind),
		Method:        payment.Method,
		Status:        string(payment.Status),
		Receipt:       payment.Receipt,
		Note:          payment.Note,
		PaidAt:        payment.PaidAt,
		VoidedAt:      payment.VoidedAt,
		CreatedAt:     payment.CreatedAt,
	}
}

func toPaymentResponses(payments []domain.Payment) []api.PaymentResponse {
	out := make([]api.PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}

	return out
}
