package app

import (
	"errors"
	"net/http"

	"github.com/CastleDev04/venue-reservation-system/api"
	"github.com/CastleDev04/venue-reservation-system/internal/domain"
)

func (app *Application) ListServices(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	params := api.ListServicesParams{
		Sort:   app.readString(qs, "sort", "name"),
		Active: app.readString(qs, "active", ""),
		Mode:   app.readString(qs, "pricingMode", ""),
		Term:   app.readString(qs, "search", ""),
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

	filters := domain.ServiceFilters{
		PricingMode: domain.PricingMode(params.Mode),
		Term:        params.Term,
	}

	if params.Active != "" {
		active := params.Active == "true"
		filters.Active = &active
	}

	pagination := domain.Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
		Sort:     params.Sort,
	}

	services, metadata, err := app.serviceRepo.GetAll(r.Context(), filters, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ServicesResponse{
		Services: make([]api.ServiceResponse, 0, len(services)),
		Metadata: toMetadata(metadata),
	}

	for _, service := range services {
		resp.Services = append(resp.Services, toServiceResponse(service))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "serviceId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	service, err := app.serviceRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toServiceResponse(service), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateService(w http.ResponseWriter, r *http.Request) {
	var input api.CreateServiceRequest

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

	if input.Price.IsNegative() {
		app.badRequestResponse(w, r, errors.New("price must not be negative"))
		return
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	service := &domain.Service{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		PricingMode: domain.PricingMode(input.PricingMode),
		Active:      active,
	}

	err = app.serviceRepo.Create(r.Context(), service)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toServiceResponse(service), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "serviceId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	service, err := app.serviceRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	var input api.UpdateServiceRequest

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

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			app.badRequestResponse(w, r, errors.New("price must not be negative"))
			return
		}
		service.Price = *input.Price
	}
	if input.PricingMode != nil {
		service.PricingMode = domain.PricingMode(*input.PricingMode)
	}
	if input.Active != nil {
		service.Active = *input.Active
	}

	err = app.serviceRepo.Update(r.Context(), service)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toServiceResponse(service), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toServiceResponse(service *domain.Service) api.ServiceResponse {
	return api.ServiceResponse{
		Id:          service.ID,
		Name:        service.Name,
		Description: service.Description,
		Price:       service.Price,
		PricingMode: string(service.PricingMode),
		Active:      service.Active,
		CreatedAt:   service.CreatedAt,
	}
}

func toMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
