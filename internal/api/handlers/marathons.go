package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/policy"
)

type MarathonsHandler struct {
	Service *marathons.Service
	Rules   policy.Ruleset
	Env     string
}

func NewMarathonsHandler(service *marathons.Service, rules policy.Ruleset, env string) *MarathonsHandler {
	return &MarathonsHandler{Service: service, Rules: rules, Env: env}
}

func (h *MarathonsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceMarathons, policy.ActionList, nil, h.Env) {
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), marathons.Filters{ID: id})
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	payload := make([]marathonResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toMarathonResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

type marathonCategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Currency string  `json:"currency" validate:"required"`
}

type marathonSponsorRequest struct {
	Name string `json:"name" validate:"required"`
}

type createMarathonRequest struct {
	Name       string                    `json:"name" validate:"required,max=256"`
	Theme      *string                   `json:"theme"`
	StartDate  time.Time                 `json:"start_date" validate:"required"`
	EndDate    time.Time                 `json:"end_date" validate:"required"`
	Categories []marathonCategoryRequest `json:"categories" validate:"required,min=1,dive"`
	Sponsors   []marathonSponsorRequest  `json:"sponsors" validate:"omitempty,dive"`
}

func (h *MarathonsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceMarathons, policy.ActionCreate, nil, h.Env) {
		return
	}

	var req createMarathonRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	params := marathons.CreateParams{
		Name:      req.Name,
		Theme:     req.Theme,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	for _, category := range req.Categories {
		name, err := categories.ParseName(category.Name)
		if err != nil {
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("categories", err.Error()))
			return
		}
		currency, err := categories.ParseCurrency(category.Currency)
		if err != nil {
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("categories", err.Error()))
			return
		}
		params.Categories = append(params.Categories, marathons.CategoryInput{
			Name:     name,
			Price:    category.Price,
			Currency: currency,
		})
	}
	for _, sponsor := range req.Sponsors {
		params.Sponsors = append(params.Sponsors, marathons.SponsorInput{Name: sponsor.Name})
	}

	created, err := h.Service.Create(r.Context(), middleware.Actor(r), params)
	if err != nil {
		writeMarathonError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toMarathonResponse(created))
}

func (h *MarathonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	marathon, ok := h.resolve(w, r, policy.ActionRetrieve)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMarathonResponse(marathon))
}

type updateMarathonRequest struct {
	Name      *string    `json:"name" validate:"omitempty,max=256"`
	Theme     *string    `json:"theme"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (h *MarathonsHandler) Update(w http.ResponseWriter, r *http.Request) {
	marathon, ok := h.resolve(w, r, policy.ActionUpdate)
	if !ok {
		return
	}

	var req updateMarathonRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	updated, err := h.Service.Update(r.Context(), marathon.ID, marathons.UpdateParams{
		Name:      req.Name,
		Theme:     req.Theme,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeMarathonError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toMarathonResponse(updated))
}

// Delete removes the marathon and, with it, every category, sponsor and
// payment underneath.
func (h *MarathonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	marathon, ok := h.resolve(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), marathon.ID); err != nil {
		if errors.Is(err, marathons.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarathonsHandler) resolve(w http.ResponseWriter, r *http.Request, action policy.Action) (*marathons.Marathon, bool) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return nil, false
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return nil, false
	}

	marathon, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, marathons.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return nil, false
		}
		problem.ServerError(w, r, err, h.Env)
		return nil, false
	}

	if !authorize(w, r, h.Rules, policy.ResourceMarathons, action, marathon, h.Env) {
		return nil, false
	}
	return marathon, true
}

func writeMarathonError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var fieldErr marathons.FieldError
	var categoryErr categories.FieldError
	switch {
	case errors.As(err, &fieldErr):
		problem.Validation(w, r, err, env, problem.WithFieldError(fieldErr.Field, fieldErr.Message))
	case errors.As(err, &categoryErr):
		problem.Validation(w, r, err, env, problem.WithFieldError(categoryErr.Field, categoryErr.Message))
	case errors.Is(err, marathons.ErrNotFound):
		problem.NotFound(w, r, err, env)
	default:
		problem.ServerError(w, r, err, env)
	}
}
