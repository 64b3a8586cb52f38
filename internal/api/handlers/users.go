package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/kimbia-events/server/internal/policy"
)

type UsersHandler struct {
	Service *users.Service
	Rules   policy.Ruleset
	Env     string
}

func NewUsersHandler(service *users.Service, rules policy.Ruleset, env string) *UsersHandler {
	return &UsersHandler{Service: service, Rules: rules, Env: env}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourceUsers, policy.ActionList, nil, h.Env) {
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}
	query := r.URL.Query()
	filters := users.Filters{
		ID:               id,
		Email:            strings.TrimSpace(query.Get("email")),
		EmailContains:    strings.TrimSpace(query.Get("email_contains")),
		Username:         strings.TrimSpace(query.Get("username")),
		UsernameContains: strings.TrimSpace(query.Get("username_contains")),
	}

	items, err := h.Service.List(r.Context(), filters)
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	payload := make([]userResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toUserResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.resolve(w, r, policy.ActionRetrieve)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=150"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,max=256"`
	Phone    *string `json:"phone"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=M F"`
	IsActive *bool   `json:"is_active"`
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.resolve(w, r, policy.ActionUpdate)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	var gender *users.Gender
	if req.Gender != nil {
		value := users.Gender(*req.Gender)
		gender = &value
	}

	updated, err := h.Service.Update(r.Context(), user.ID, users.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   gender,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("username", "already taken"))
		case errors.Is(err, users.ErrEmailTaken):
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("email", "already taken"))
		case errors.Is(err, users.ErrNotFound):
			problem.NotFound(w, r, err, h.Env)
		default:
			problem.ServerError(w, r, err, h.Env)
		}
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.resolve(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), user.ID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolve fetches the target user and runs the policy gate for single-object
// actions. Existence is checked before ownership, so a 404 is possible for
// objects the requester may not touch.
func (h *UsersHandler) resolve(w http.ResponseWriter, r *http.Request, action policy.Action) (*users.User, bool) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return nil, false
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return nil, false
	}

	user, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return nil, false
		}
		problem.ServerError(w, r, err, h.Env)
		return nil, false
	}

	if !authorize(w, r, h.Rules, policy.ResourceUsers, action, user, h.Env) {
		return nil, false
	}
	return user, true
}
