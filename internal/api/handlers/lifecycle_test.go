package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/domain/payments"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

// The full entry flow across handlers: an organizer registers and logs in,
// publishes a marathon with a category, a client pays for it, an admin marks
// the payment settled, and the settled payment refuses deletion.
func TestMarathonEntryLifecycle(t *testing.T) {
	usersByName := map[string]*users.User{}
	userRepo := stubUserRepo{
		createFn: func(params users.CreateParams) (*users.User, error) {
			u := &users.User{
				ID:           uuid.New(),
				Username:     params.Username,
				Email:        params.Email,
				PasswordHash: params.PasswordHash,
				Role:         params.Role,
				IsStaff:      params.IsStaff,
				IsActive:     true,
				DateJoined:   time.Now(),
			}
			usersByName[u.Username] = u
			return u, nil
		},
		getByUsernameFn: func(username string) (*users.User, error) {
			if u, ok := usersByName[username]; ok {
				return u, nil
			}
			return nil, users.ErrNotFound
		},
		getByEmailFn: func(string) (*users.User, error) { return nil, users.ErrNotFound },
	}

	tokensByUser := map[uuid.UUID]*users.Token{}
	tokenRepo := stubTokenRepo{
		getOrCreateFn: func(userID uuid.UUID, key string) (*users.Token, error) {
			if existing, ok := tokensByUser[userID]; ok {
				return existing, nil
			}
			token := &users.Token{ID: uuid.New(), UserID: userID, Key: key, CreatedAt: time.Now()}
			tokensByUser[userID] = token
			return token, nil
		},
	}
	authHandler := NewAuthHandler(newUsersService(userRepo, tokenRepo), "test")

	res := httptest.NewRecorder()
	authHandler.Register(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"username":"alice","password":"password1","role":"organizer"}`)))
	require.Equal(t, http.StatusCreated, res.Code)
	alice := usersByName["alice"]
	require.NotNil(t, alice)

	// Login hands back the key issued at registration, not a fresh one.
	res = httptest.NewRecorder()
	authHandler.Login(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"alice","password":"password1"}`)))
	require.Equal(t, http.StatusOK, res.Code)
	var login authResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&login))
	require.Equal(t, tokensByUser[alice.ID].Key, login.Token)

	var marathon *marathons.Marathon
	marathonRepo := stubMarathonRepo{
		createFn: func(params marathons.CreateParams) (*marathons.Marathon, error) {
			m := &marathons.Marathon{
				ID:          uuid.New(),
				Name:        params.Name,
				OrganizerID: params.OrganizerID,
				StartDate:   params.StartDate,
				EndDate:     params.EndDate,
				Organizer:   marathons.OrganizerSummary{ID: params.OrganizerID, Username: "alice"},
			}
			for _, c := range params.Categories {
				m.Categories = append(m.Categories, categories.Category{
					ID:          uuid.New(),
					Name:        c.Name,
					Price:       c.Price,
					Currency:    c.Currency,
					MarathonID:  m.ID,
					OrganizerID: m.OrganizerID,
				})
			}
			marathon = m
			return m, nil
		},
	}

	body := `{
		"name": "City Marathon",
		"start_date": "2026-10-01T06:00:00Z",
		"end_date": "2026-10-01T14:00:00Z",
		"categories": [{"name": "FULL", "price": 100, "currency": "USD"}]
	}`
	res = httptest.NewRecorder()
	newMarathonsHandler(marathonRepo).Create(res,
		withActor(httptest.NewRequest(http.MethodPost, "/api/v1/marathons", strings.NewReader(body)), alice))
	require.Equal(t, http.StatusCreated, res.Code)
	require.NotNil(t, marathon)
	require.Equal(t, alice.ID, marathon.OrganizerID)
	require.Len(t, marathon.Categories, 1)
	category := marathon.Categories[0]

	res = httptest.NewRecorder()
	authHandler.Register(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"username":"bob","password":"password1","role":"client"}`)))
	require.Equal(t, http.StatusCreated, res.Code)
	bob := usersByName["bob"]
	require.NotNil(t, bob)

	var payment *payments.Payment
	paymentRepo := stubPaymentRepo{
		createFn: func(params payments.CreateParams) (*payments.Payment, error) {
			payment = &payments.Payment{
				ID:          uuid.New(),
				MarathonID:  params.MarathonID,
				CategoryID:  params.CategoryID,
				UserID:      params.UserID,
				OrganizerID: marathon.OrganizerID,
				Status:      params.Status,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			return payment, nil
		},
		getByIDFn: func(id uuid.UUID) (*payments.Payment, error) {
			if payment != nil && payment.ID == id {
				return payment, nil
			}
			return nil, payments.ErrNotFound
		},
		updateFn: func(_ uuid.UUID, params payments.UpdateParams) (*payments.Payment, error) {
			if params.Status != nil {
				payment.Status = *params.Status
			}
			if params.ValidationDate != nil {
				payment.ValidationDate = params.ValidationDate
			}
			return payment, nil
		},
		deleteFn: func(uuid.UUID) error {
			if payment.Status == payments.StatusPaid {
				return payments.ErrProtected
			}
			payment = nil
			return nil
		},
	}
	resolver := stubCategoryResolver(func(categoryID uuid.UUID) (uuid.UUID, error) {
		if categoryID == category.ID {
			return marathon.ID, nil
		}
		return uuid.Nil, payments.ErrCategoryNotFound
	})
	paymentsHandler := newPaymentsHandler(paymentRepo, resolver)

	// A spoofed status in the payload is ignored: the entry starts UNPAID
	// and belongs to the requester.
	payBody := fmt.Sprintf(`{"marathon":%q,"category":%q,"status":"PAID"}`, marathon.ID, category.ID)
	res = httptest.NewRecorder()
	paymentsHandler.Create(res,
		withActor(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(payBody)), bob))
	require.Equal(t, http.StatusCreated, res.Code)
	require.NotNil(t, payment)
	require.Equal(t, payments.StatusUnpaid, payment.Status)
	require.Equal(t, bob.ID, payment.UserID)

	res = httptest.NewRecorder()
	updateReq := withActor(httptest.NewRequest(http.MethodPatch, "/api/v1/payments/"+payment.ID.String(),
		strings.NewReader(`{"status":"PAID"}`)), adminActor())
	updateReq.SetPathValue("id", payment.ID.String())
	paymentsHandler.Update(res, updateReq)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, payments.StatusPaid, payment.Status)

	// Once settled the payment refuses deletion, even for an admin.
	res = httptest.NewRecorder()
	deleteReq := withActor(httptest.NewRequest(http.MethodDelete, "/api/v1/payments/"+payment.ID.String(), nil), adminActor())
	deleteReq.SetPathValue("id", payment.ID.String())
	paymentsHandler.Delete(res, deleteReq)
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, res.Body.String(), "protected-reference")
	require.Equal(t, payments.StatusPaid, payment.Status)
}
