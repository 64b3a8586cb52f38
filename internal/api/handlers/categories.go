package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/policy"
)

type CategoriesHandler struct {
	Service *categories.Service
	Rules   policy.Ruleset
	Env     string
}

func NewCategoriesHandler(service *categories.Service, rules policy.Ruleset, env string) *CategoriesHandler {
	return &CategoriesHandler{Service: service, Rules: rules, Env: env}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceCategories, policy.ActionList, nil, h.Env) {
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), categories.Filters{ID: id})
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	payload := make([]categoryResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toCategoryResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

type createCategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Currency string  `json:"currency" validate:"required"`
	Marathon string  `json:"marathon" validate:"required,uuid"`
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceCategories, policy.ActionCreate, nil, h.Env) {
		return
	}

	var req createCategoryRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	name, err := categories.ParseName(req.Name)
	if err != nil {
		writeCategoryError(w, r, err, h.Env)
		return
	}
	currency, err := categories.ParseCurrency(req.Currency)
	if err != nil {
		writeCategoryError(w, r, err, h.Env)
		return
	}
	marathonID, err := uuid.Parse(req.Marathon)
	if err != nil {
		problem.Validation(w, r, err, h.Env, problem.WithFieldError("marathon", "must be a valid id"))
		return
	}

	created, err := h.Service.Create(r.Context(), middleware.Actor(r), categories.CreateParams{
		Name:       name,
		Price:      req.Price,
		Currency:   currency,
		MarathonID: marathonID,
	})
	if err != nil {
		writeCategoryError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := h.resolve(w, r, policy.ActionRetrieve)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

type updateCategoryRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency *string  `json:"currency"`
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := h.resolve(w, r, policy.ActionUpdate)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	params := categories.UpdateParams{Price: req.Price}
	if req.Name != nil {
		name, err := categories.ParseName(*req.Name)
		if err != nil {
			writeCategoryError(w, r, err, h.Env)
			return
		}
		params.Name = &name
	}
	if req.Currency != nil {
		currency, err := categories.ParseCurrency(*req.Currency)
		if err != nil {
			writeCategoryError(w, r, err, h.Env)
			return
		}
		params.Currency = &currency
	}

	updated, err := h.Service.Update(r.Context(), category.ID, params)
	if err != nil {
		writeCategoryError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := h.resolve(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), category.ID); err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoriesHandler) resolve(w http.ResponseWriter, r *http.Request, action policy.Action) (*categories.Category, bool) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return nil, false
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return nil, false
	}

	category, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return nil, false
		}
		problem.ServerError(w, r, err, h.Env)
		return nil, false
	}

	if !authorize(w, r, h.Rules, policy.ResourceCategories, action, category, h.Env) {
		return nil, false
	}
	return category, true
}

func writeCategoryError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var fieldErr categories.FieldError
	switch {
	case errors.As(err, &fieldErr):
		problem.Validation(w, r, err, env, problem.WithFieldError(fieldErr.Field, fieldErr.Message))
	case errors.Is(err, categories.ErrNotFound):
		problem.NotFound(w, r, err, env)
	default:
		problem.ServerError(w, r, err, env)
	}
}
