package handlers

import (
	"errors"
	"net/http"

	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
)

type AuthHandler struct {
	Service *users.Service
	Env     string
}

func NewAuthHandler(service *users.Service, env string) *AuthHandler {
	return &AuthHandler{Service: service, Env: env}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=150"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required"`
	FullName string  `json:"full_name" validate:"max=256"`
	Phone    *string `json:"phone"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=M F"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login handles POST /api/v1/auth/login. It validates credentials and
// returns the user's persistent bearer token, issuing one on first login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req loginRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Invalid credentials", nil, h.Env,
				problem.WithDetail("Invalid username or password"))
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token.Key, User: toUserResponse(user)})
}

// Register handles POST /api/v1/auth/register. Role is fixed here, once.
// role=admin requires the requester to already be an authenticated admin.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req registerRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	role, ok := auth.ParseRole(req.Role)
	if !ok {
		problem.Validation(w, r, nil, h.Env,
			problem.WithFieldError("role", "must be admin, organizer or client"))
		return
	}

	var gender *users.Gender
	if req.Gender != nil {
		value := users.Gender(*req.Gender)
		gender = &value
	}

	actor := middleware.Actor(r)
	user, token, err := h.Service.Register(r.Context(), actor, users.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   gender,
	})
	if err != nil {
		var fieldErr users.FieldError
		switch {
		case errors.As(err, &fieldErr):
			problem.Validation(w, r, err, h.Env, problem.WithFieldError(fieldErr.Field, fieldErr.Message))
		case errors.Is(err, users.ErrUsernameTaken):
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("username", "already taken"))
		case errors.Is(err, users.ErrEmailTaken):
			problem.Validation(w, r, err, h.Env, problem.WithFieldError("email", "already taken"))
		default:
			problem.ServerError(w, r, err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token.Key, User: toUserResponse(user)})
}
