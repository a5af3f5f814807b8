package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/CastleDev04/venue-reservation-system/api"
	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/CastleDev04/venue-reservation-system/internal/pricing"
)

func (app *Application) ListReservations(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	params := api.ListReservationsParams{
		Sort:      app.readString(qs, "sort", "-created_at"),
		Status:    app.readString(qs, "status", ""),
		EventType: app.readString(qs, "eventType", ""),
		Term:      app.readString(qs, "search", ""),
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

	filters := domain.ReservationFilters{
		Status:    domain.ReservationStatus(params.Status),
		EventType: params.EventType,
		Term:      params.Term,
	}

	filters.DateFrom, err = app.readDate(qs, "from")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	filters.DateTo, err = app.readDate(qs, "to")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
		Sort:     params.Sort,
	}

	reservations, metadata, err := app.reservationRepo.GetAll(r.Context(), filters, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReservationsResponse{
		Reservations: make([]api.ReservationResponse, 0, len(reservations)),
		Metadata:     toMetadata(metadata),
	}

	for _, reservation := range reservations {
		resp.Reservations = append(resp.Reservations, toReservationResponse(reservation))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservation(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var input api.CreateReservationRequest

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

	total, err := pricing.ComputeTotal(r.Context(), app.serviceRepo, input.ServiceIds, input.Headcount)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidHeadcount) {
			app.badRequestResponse(w, r, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	serviceIds := input.ServiceIds
	if serviceIds == nil {
		serviceIds = []int{}
	}

	reservation := &domain.Reservation{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		EventType:     input.EventType,
		EventDate:     input.EventDate,
		Headcount:     input.Headcount,
		ServiceIDs:    serviceIds,
		Total:         total,
		Status:        domain.ReservationStatusPending,
		Notes:         input.Notes,
	}

	// Codes derive from the clock, so two simultaneous requests can land on
	// the same one and trip the unique constraint. Each retry draws a fresh
	// code.
	for attempt := 0; ; attempt++ {
		reservation.Code = domain.NewReservationCode()

		err = app.reservationRepo.Create(r.Context(), reservation)
		if errors.Is(err, domain.ErrDuplicateCode) && attempt < 3 {
			continue
		}

		break
	}

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	var input api.UpdateReservationRequest

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

	if input.CustomerName != nil {
		reservation.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		reservation.CustomerEmail = *input.CustomerEmail
	}
	if input.EventType != nil {
		reservation.EventType = *input.EventType
	}
	if input.EventDate != nil {
		reservation.EventDate = *input.EventDate
	}
	if input.Headcount != nil {
		reservation.Headcount = *input.Headcount
	}
	if input.ServiceIds != nil {
		reservation.ServiceIDs = *input.ServiceIds
	}
	if input.Notes != nil {
		reservation.Notes = *input.Notes
	}

	// Any edit may change the price, so the total is always recomputed from
	// the current selection and headcount.
	total, err := pricing.ComputeTotal(r.Context(), app.serviceRepo, reservation.ServiceIDs, reservation.Headcount)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidHeadcount) {
			app.badRequestResponse(w, r, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	reservation.Total = total

	err = app.reservationRepo.Update(r.Context(), reservation)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			app.editConflictResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ToggleReservationStatus(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	err := reservation.ToggleStatus()
	if err != nil {
		app.conflictResponse(w, r, "Cancelled reservations cannot change status")
		return
	}

	err = app.reservationRepo.SetStatus(r.Context(), reservation.ID, reservation.Status)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelReservation(w http.ResponseWriter, r *http.Request) {
	reservation, ok := app.fetchReservation(w, r)
	if !ok {
		return
	}

	if reservation.Status != domain.ReservationStatusCancelled {
		err := app.reservationRepo.SetStatus(r.Context(), reservation.ID, domain.ReservationStatusCancelled)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				app.notFoundResponse(w, r)
				return
			}

			app.serverErrorResponse(w, r, err)
			return
		}

		reservation.Status = domain.ReservationStatusCancelled
	}

	err := app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) fetchReservation(w http.ResponseWriter, r *http.Request) (*domain.Reservation, bool) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	reservation, err := app.reservationRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return nil, false
		}

		app.serverErrorResponse(w, r, err)
		return nil, false
	}

	return reservation, true
}

func (app *Application) readDate(qs map[string][]string, key string) (*time.Time, error) {
	values := qs[key]
	if len(values) == 0 || values[0] == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", values[0])
	if err != nil {
		return nil, errors.New("query parameter " + key + " must be a date in YYYY-MM-DD format")
	}

	return &t, nil
}

func toReservationResponse(reservation *domain.Reservation) api.ReservationResponse {
	serviceIds := reservation.ServiceIDs
	if serviceIds == nil {
		serviceIds = []int{}
	}

	return api.ReservationResponse{
		Id:            reservation.ID,
		Code:          reservation.Code,
		CustomerName:  reservation.CustomerName,
		CustomerEmail: reservation.CustomerEmail,
		EventType:     reservation.EventType,
		EventDate:     reservation.EventDate,
		Headcount:     reservation.Headcount,
		ServiceIds:    serviceIds,
		Total:         reservation.Total,
		AdvanceTotal:  reservation.AdvanceTotal,
		FullyPaid:     reservation.FullyPaid,
		Status:        string(reservation.Status),
		Notes:         reservation.Notes,
		CreatedAt:     reservation.CreatedAt,
	}
}
