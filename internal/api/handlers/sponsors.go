package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/domain/sponsors"
	"github.com/kimbia-events/server/internal/policy"
)

type SponsorsHandler struct {
	Service *sponsors.Service
	Rules   policy.Ruleset
	Env     string
}

func NewSponsorsHandler(service *sponsors.Service, rules policy.Ruleset, env string) *SponsorsHandler {
	return &SponsorsHandler{Service: service, Rules: rules, Env: env}
}

func (h *SponsorsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceSponsors, policy.ActionList, nil, h.Env) {
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), sponsors.Filters{ID: id})
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	payload := make([]sponsorResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toSponsorResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

type createSponsorRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Marathon string `json:"marathon" validate:"required,uuid"`
}

func (h *SponsorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceSponsors, policy.ActionCreate, nil, h.Env) {
		return
	}

	var req createSponsorRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	marathonID, err := uuid.Parse(req.Marathon)
	if err != nil {
		problem.Validation(w, r, err, h.Env, problem.WithFieldError("marathon", "must be a valid id"))
		return
	}

	created, err := h.Service.Create(r.Context(), middleware.Actor(r), sponsors.CreateParams{
		Name:       req.Name,
		MarathonID: marathonID,
	})
	if err != nil {
		writeSponsorError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toSponsorResponse(created))
}

func (h *SponsorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sponsor, ok := h.resolve(w, r, policy.ActionRetrieve)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSponsorResponse(sponsor))
}

type updateSponsorRequest struct {
	Name *string `json:"name" validate:"omitempty,max=256"`
}

func (h *SponsorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sponsor, ok := h.resolve(w, r, policy.ActionUpdate)
	if !ok {
		return
	}

	var req updateSponsorRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	updated, err := h.Service.Update(r.Context(), sponsor.ID, sponsors.UpdateParams{Name: req.Name})
	if err != nil {
		writeSponsorError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toSponsorResponse(updated))
}

func (h *SponsorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sponsor, ok := h.resolve(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), sponsor.ID); err != nil {
		if errors.Is(err, sponsors.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SponsorsHandler) resolve(w http.ResponseWriter, r *http.Request, action policy.Action) (*sponsors.Sponsor, bool) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return nil, false
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return nil, false
	}

	sponsor, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sponsors.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return nil, false
		}
		problem.ServerError(w, r, err, h.Env)
		return nil, false
	}

	if !authorize(w, r, h.Rules, policy.ResourceSponsors, action, sponsor, h.Env) {
		return nil, false
	}
	return sponsor, true
}

func writeSponsorError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var fieldErr sponsors.FieldError
	switch {
	case errors.As(err, &fieldErr):
		problem.Validation(w, r, err, env, problem.WithFieldError(fieldErr.Field, fieldErr.Message))
	case errors.Is(err, sponsors.ErrNotFound):
		problem.NotFound(w, r, err, env)
	default:
		problem.ServerError(w, r, err, env)
	}
}
