package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	createFn        func(params users.CreateParams) (*users.User, error)
	getByIDFn       func(id uuid.UUID) (*users.User, error)
	getByUsernameFn func(username string) (*users.User, error)
	getByEmailFn    func(email string) (*users.User, error)
	listFn          func(filters users.Filters) ([]users.User, error)
	updateFn        func(id uuid.UUID, params users.UpdateParams) (*users.User, error)
	deleteFn        func(id uuid.UUID) error
}

func (s stubUserRepo) Create(_ context.Context, params users.CreateParams) (*users.User, error) {
	return s.createFn(params)
}

func (s stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	return s.getByIDFn(id)
}

func (s stubUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	return s.getByUsernameFn(username)
}

func (s stubUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	return s.getByEmailFn(email)
}

func (s stubUserRepo) List(_ context.Context, filters users.Filters) ([]users.User, error) {
	return s.listFn(filters)
}

func (s stubUserRepo) Update(_ context.Context, id uuid.UUID, params users.UpdateParams) (*users.User, error) {
	return s.updateFn(id, params)
}

func (s stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	return s.deleteFn(id)
}

type stubTokenRepo struct {
	getOrCreateFn func(userID uuid.UUID, key string) (*users.Token, error)
	getByKeyFn    func(key string) (*users.Token, error)
}

func (s stubTokenRepo) GetOrCreate(_ context.Context, userID uuid.UUID, key string) (*users.Token, error) {
	return s.getOrCreateFn(userID, key)
}

func (s stubTokenRepo) GetByKey(_ context.Context, key string) (*users.Token, error) {
	return s.getByKeyFn(key)
}

func (s stubTokenRepo) TouchLastUsed(_ context.Context, _ uuid.UUID) error {
	return nil
}

func emptyUserRepo() stubUserRepo {
	return stubUserRepo{
		getByUsernameFn: func(string) (*users.User, error) { return nil, users.ErrNotFound },
		getByEmailFn:    func(string) (*users.User, error) { return nil, users.ErrNotFound },
	}
}

func issuingTokenRepo() stubTokenRepo {
	return stubTokenRepo{
		getOrCreateFn: func(userID uuid.UUID, key string) (*users.Token, error) {
			return &users.Token{ID: uuid.New(), UserID: userID, Key: key, CreatedAt: time.Now()}, nil
		},
	}
}

func newUsersService(repo users.Repository, tokens users.TokenRepository) *users.Service {
	return users.NewService(repo, tokens, 20, 4, zerolog.Nop())
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("password1", 4)
	require.NoError(t, err)

	repo := emptyUserRepo()
	repo.getByUsernameFn = func(username string) (*users.User, error) {
		return &users.User{ID: uuid.New(), Username: username, PasswordHash: hash, Role: auth.RoleClient, IsActive: true}, nil
	}

	h := NewAuthHandler(newUsersService(repo, issuingTokenRepo()), "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"runner","password":"password1"}`))
	res := httptest.NewRecorder()

	h.Login(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload authResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)
	require.Equal(t, "runner", payload.User.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(newUsersService(emptyUserRepo(), issuingTokenRepo()), "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"ghost","password":"whatever1"}`))
	res := httptest.NewRecorder()

	h.Login(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Contains(t, res.Body.String(), "Invalid username or password")
}

func TestLoginMissingFields(t *testing.T) {
	h := NewAuthHandler(newUsersService(emptyUserRepo(), issuingTokenRepo()), "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"x"}`))
	res := httptest.NewRecorder()

	h.Login(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterSuccess(t *testing.T) {
	repo := emptyUserRepo()
	repo.createFn = func(params users.CreateParams) (*users.User, error) {
		return &users.User{ID: uuid.New(), Username: params.Username, Email: params.Email, Role: params.Role, IsActive: true}, nil
	}

	h := NewAuthHandler(newUsersService(repo, issuingTokenRepo()), "test")
	body := `{"username":"neema","email":"neema@example.com","password":"password1","role":"organizer","gender":"F"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Register(res, req)

	require.Equal(t, http.StatusCreated, res.Code)

	var payload authResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotEmpty(t, payload.Token)
	require.True(t, payload.User.IsOrganizer)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	h := NewAuthHandler(newUsersService(emptyUserRepo(), issuingTokenRepo()), "test")
	body := `{"username":"neema","password":"password1","role":"superuser"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Register(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "role")
}

func TestRegisterAdminRequiresAdminActor(t *testing.T) {
	h := NewAuthHandler(newUsersService(emptyUserRepo(), issuingTokenRepo()), "test")
	body := `{"username":"sneaky","password":"password1","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Register(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "role")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := emptyUserRepo()
	repo.getByUsernameFn = func(string) (*users.User, error) {
		return &users.User{ID: uuid.New()}, nil
	}

	h := NewAuthHandler(newUsersService(repo, issuingTokenRepo()), "test")
	body := `{"username":"taken","password":"password1","role":"client"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Register(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "username")
}

func TestRegisterShortPassword(t *testing.T) {
	h := NewAuthHandler(newUsersService(emptyUserRepo(), issuingTokenRepo()), "test")
	body := `{"username":"neema","password":"short","role":"client"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Register(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}
