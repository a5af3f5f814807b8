package app

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/CastleDev04/venue-reservation-system/api"
	"github.com/CastleDev04/venue-reservation-system/internal/domain"
	"github.com/CastleDev04/venue-reservation-system/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReservationsTestSuite struct {
	suite.Suite
	app             *Application
	reservationRepo *mocks.MockReservationRepo
	serviceRepo     *mocks.MockServiceRepo
}

func (s *ReservationsTestSuite) SetupTest() {
	s.reservationRepo = new(mocks.MockReservationRepo)
	s.serviceRepo = new(mocks.MockServiceRepo)
	s.app = newTestApplication(func(a *Application) {
		a.reservationRepo = s.reservationRepo
		a.serviceRepo = s.serviceRepo
	})
}

func TestReservationsSuite(t *testing.T) {
	suite.Run(t, new(ReservationsTestSuite))
}

func (s *ReservationsTestSuite) TestCreateReservation() {
	eventDate := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		input          api.CreateReservationRequest
		setupMock      func()
		wantStatus     int
		wantErrMessage string
		wantTotal      decimal.Decimal
	}{
		{
			name: "missing customer name",
			input: api.CreateReservationRequest{
				CustomerEmail: "ana@example.com",
				EventDate:     eventDate,
				Headcount:     20,
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name: "invalid email",
			input: api.CreateReservationRequest{
				CustomerName:  "Ana Benitez",
				CustomerEmail: "not-an-email",
				EventDate:     eventDate,
				Headcount:     20,
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid email address",
		},
		{
			name: "headcount above the limit",
			input: api.CreateReservationRequest{
				CustomerName:  "Ana Benitez",
				CustomerEmail: "ana@example.com",
				EventDate:     eventDate,
				Headcount:     501,
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at most 500",
		},
		{
			name: "successful creation prices the selection",
			input: api.CreateReservationRequest{
				CustomerName:  "Ana Benitez",
				CustomerEmail: "ana@example.com",
				EventType:     "wedding",
				EventDate:     eventDate,
				Headcount:     20,
				ServiceIds:    []int{1, 2},
			},
			setupMock: func() {
				s.serviceRepo.On("GetById", mock.Anything, 1).Return(&domain.Service{
					ID: 1, Price: decimal.NewFromInt(400), PricingMode: domain.PricingModeFixed, Active: true,
				}, nil)
				s.serviceRepo.On("GetById", mock.Anything, 2).Return(&domain.Service{
					ID: 2, Price: decimal.NewFromInt(35), PricingMode: domain.PricingModePerPerson, Active: true,
				}, nil)
				s.reservationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
					Run(func(args mock.Arguments) {
						reservation := args.Get(1).(*domain.Reservation)
						reservation.ID = 3
						reservation.CreatedAt = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
					}).
					Return(nil)
			},
			wantStatus: http.StatusCreated,
			// 400 fixed + 35 * 20 guests, below any volume discount tier
			wantTotal: decimal.NewFromInt(1100),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			if tt.setupMock != nil {
				tt.setupMock()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/reservations", tt.input)

			s.app.CreateReservation(w, r)

			s.Equal(tt.wantStatus, w.Code)

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{tt.wantStatus, tt.wantErrMessage})

			if tt.wantStatus == http.StatusCreated {
				var resp api.ReservationResponse
				s.NoError(json.NewDecoder(w.Body).Decode(&resp))

				s.Equal(3, resp.Id)
				s.Regexp(`^RES-\d{6}$`, resp.Code)
				s.Equal("pending", resp.Status)
				s.True(resp.Total.Equal(tt.wantTotal), "total = %s, want %s", resp.Total, tt.wantTotal)
				s.False(resp.FullyPaid)
			}
		})
	}
}

func (s *ReservationsTestSuite) TestCreateReservationRetriesOnCodeCollision() {
	s.reservationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
		Return(domain.ErrDuplicateCode).Once()
	s.reservationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Reservation).ID = 8
		}).
		Return(nil).Once()

	w, r := executeRequest(s.T(), http.MethodPost, "/reservations", api.CreateReservationRequest{
		CustomerName:  "Ana Benitez",
		CustomerEmail: "ana@example.com",
		EventDate:     time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Headcount:     20,
	})

	s.app.CreateReservation(w, r)

	s.Equal(http.StatusCreated, w.Code)

	var resp api.ReservationResponse
	s.NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(8, resp.Id)
	s.Regexp(`^RES-\d{6}$`, resp.Code)

	s.reservationRepo.AssertNumberOfCalls(s.T(), "Create", 2)
}

func (s *ReservationsTestSuite) TestUpdateReservation() {
	existing := func() *domain.Reservation {
		return &domain.Reservation{
			ID:            5,
			Code:          "RES-000123",
			CustomerName:  "Ana Benitez",
			CustomerEmail: "ana@example.com",
			EventDate:     time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
			Headcount:     20,
			ServiceIDs:    []int{2},
			Total:         decimal.NewFromInt(700),
			Status:        domain.ReservationStatusPending,
			Version:       1,
		}
	}

	s.Run("repricing follows a headcount change", func() {
		s.reservationRepo.On("GetById", mock.Anything, 5).Return(existing(), nil).Once()
		s.serviceRepo.On("GetById", mock.Anything, 2).Return(&domain.Service{
			ID: 2, Price: decimal.NewFromInt(35), PricingMode: domain.PricingModePerPerson, Active: true,
		}, nil)
		s.reservationRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()

		w, r := executeRequest(s.T(), http.MethodPatch, "/reservations/5", api.UpdateReservationRequest{
			Headcount: ptr(60),
		})
		r = withURLParam(r, "reservationId", "5")

		s.app.UpdateReservation(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.ReservationResponse
		s.NoError(json.NewDecoder(w.Body).Decode(&resp))

		// 35 * 60 = 2100, headcount over 50 earns the 5% discount
		s.True(resp.Total.Equal(decimal.NewFromInt(1995)), "total = %s", resp.Total)
	})

	s.Run("edit conflict", func() {
		s.reservationRepo.On("GetById", mock.Anything, 5).Return(existing(), nil).Once()
		s.serviceRepo.On("GetById", mock.Anything, 2).Return(&domain.Service{
			ID: 2, Price: decimal.NewFromInt(35), PricingMode: domain.PricingModePerPerson, Active: true,
		}, nil)
		s.reservationRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
			Return(domain.ErrEditConflict).Once()

		w, r := executeRequest(s.T(), http.MethodPatch, "/reservations/5", api.UpdateReservationRequest{
			Notes: ptr("bring extra chairs"),
		})
		r = withURLParam(r, "reservationId", "5")

		s.app.UpdateReservation(w, r)

		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *ReservationsTestSuite) TestToggleReservationStatus() {
	tests := []struct {
		name       string
		status     domain.ReservationStatus
		wantStatus int
		wantAfter  string
	}{
		{"pending becomes confirmed", domain.ReservationStatusPending, http.StatusOK, "confirmed"},
		{"confirmed becomes pending", domain.ReservationStatusConfirmed, http.StatusOK, "pending"},
		{"cancelled is terminal", domain.ReservationStatusCancelled, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.reservationRepo.On("GetById", mock.Anything, 5).Return(&domain.Reservation{
				ID:     5,
				Status: tt.status,
			}, nil).Once()

			if tt.wantStatus == http.StatusOK {
				s.reservationRepo.On("SetStatus", mock.Anything, 5, domain.ReservationStatus(tt.wantAfter)).
					Return(nil).Once()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/reservations/5/status", nil)
			r = withURLParam(r, "reservationId", "5")

			s.app.ToggleReservationStatus(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.ReservationResponse
				s.NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal(tt.wantAfter, resp.Status)
			}
		})
	}
}

func (s *ReservationsTestSuite) TestCancelReservation() {
	s.Run("cancels a pending reservation", func() {
		s.reservationRepo.On("GetById", mock.Anything, 5).Return(&domain.Reservation{
			ID:     5,
			Status: domain.ReservationStatusPending,
		}, nil).Once()
		s.reservationRepo.On("SetStatus", mock.Anything, 5, domain.ReservationStatusCancelled).
			Return(nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/reservations/5/cancel", nil)
		r = withURLParam(r, "reservationId", "5")

		s.app.CancelReservation(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.ReservationResponse
		s.NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal("cancelled", resp.Status)
	})

	s.Run("cancelling twice is a no-op", func() {
		s.reservationRepo.On("GetById", mock.Anything, 6).Return(&domain.Reservation{
			ID:     6,
			Status: domain.ReservationStatusCancelled,
		}, nil).Once()

		w, r := executeRequest(s.T(), http.MethodPost, "/reservations/6/cancel", nil)
		r = withURLParam(r, "reservationId", "6")

		s.app.CancelReservation(w, r)

		s.Equal(http.StatusOK, w.Code)
		s.reservationRepo.AssertNotCalled(s.T(), "SetStatus", mock.Anything, 6, mock.Anything)
	})
}

func (s *ReservationsTestSuite) TestGetReservation() {
	s.Run("not found", func() {
		s.reservationRepo.On("GetById", mock.Anything, 99).Return(nil, domain.ErrRecordNotFound).Once()

		w, r := executeRequest(s.T(), http.MethodGet, "/reservations/99", nil)
		r = withURLParam(r, "reservationId", "99")

		s.app.GetReservation(w, r)

		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *ReservationsTestSuite) TestListReservations() {
	s.Run("invalid date filter", func() {
		w, r := executeRequest(s.T(), http.MethodGet, "/reservations?from=12-09-2026", nil)

		s.app.ListReservations(w, r)

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid sort column", func() {
		w, r := executeRequest(s.T(), http.MethodGet, "/reservations?sort=headcount", nil)

		s.app.ListReservations(w, r)

		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("successful listing", func() {
		s.reservationRepo.On("GetAll", mock.Anything,
			domain.ReservationFilters{Status: domain.ReservationStatusPending},
			domain.Pagination{Page: 1, PageSize: 20, Sort: "-created_at"},
		).Return(
			[]*domain.Reservation{
				{ID: 1, Code: "RES-000001", Status: domain.ReservationStatusPending, Total: decimal.NewFromInt(500)},
			},
			&domain.Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 1, PageSize: 20, TotalRecords: 1},
			nil,
		)

		w, r := executeRequest(s.T(), http.MethodGet, "/reservations?status=pending", nil)

		s.app.ListReservations(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.ReservationsResponse
		s.NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Len(resp.Reservations, 1)
		s.Equal("RES-000001", resp.Reservations[0].Code)
	})
}
