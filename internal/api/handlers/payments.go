package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/domain/payments"
	"github.com/kimbia-events/server/internal/metrics"
	"github.com/kimbia-events/server/internal/policy"
)

type PaymentsHandler struct {
	Service *payments.Service
	Rules   policy.Ruleset
	Env     string
}

func NewPaymentsHandler(service *payments.Service, rules policy.Ruleset, env string) *PaymentsHandler {
	return &PaymentsHandler{Service: service, Rules: rules, Env: env}
}

// List narrows to what the requester may see: admins everything, organizers
// the payments under their marathons, clients their own.
func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourcePayments, policy.ActionList, nil, h.Env) {
		return
	}

	id, err := queryUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), middleware.Actor(r), payments.Filters{ID: id})
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	payload := make([]paymentResponse, 0, len(items))
	for i := range items {
		payload = append(payload, toPaymentResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

type createPaymentRequest struct {
	Marathon string `json:"marathon" validate:"required,uuid"`
	Category string `json:"category" validate:"required,uuid"`
}

// Create records a payment intent. The payer and status fields in the
// payload are ignored: user is the requester and status starts UNPAID.
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}
	if !authorize(w, r, h.Rules, policy.ResourcePayments, policy.ActionCreate, nil, h.Env) {
		return
	}

	var req createPaymentRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	marathonID, err := uuid.Parse(req.Marathon)
	if err != nil {
		problem.Validation(w, r, err, h.Env, problem.WithFieldError("marathon", "must be a valid id"))
		return
	}
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		problem.Validation(w, r, err, h.Env, problem.WithFieldError("category", "must be a valid id"))
		return
	}

	created, err := h.Service.Create(r.Context(), middleware.Actor(r), payments.CreateInput{
		MarathonID: marathonID,
		CategoryID: categoryID,
	})
	if err != nil {
		writePaymentError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.resolve(w, r, policy.ActionRetrieve)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

type updatePaymentRequest struct {
	Status         *string    `json:"status"`
	ValidationDate *time.Time `json:"validation_date"`
}

// Update is the admin-only surface the external settlement process calls to
// flip payment status.
func (h *PaymentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.resolve(w, r, policy.ActionUpdate)
	if !ok {
		return
	}

	var req updatePaymentRequest
	if !decodeAndValidate(w, r, &req, h.Env) {
		return
	}

	params := payments.UpdateParams{ValidationDate: req.ValidationDate}
	if req.Status != nil {
		status, err := payments.ParseStatus(*req.Status)
		if err != nil {
			writePaymentError(w, r, err, h.Env)
			return
		}
		params.Status = &status
	}

	updated, err := h.Service.Update(r.Context(), payment.ID, params)
	if err != nil {
		writePaymentError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

// Delete refuses PAID payments: the guard lives in the store layer and is
// converted here to a uniform forbidden response.
func (h *PaymentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.resolve(w, r, policy.ActionDelete)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), payment.ID); err != nil {
		switch {
		case errors.Is(err, payments.ErrProtected):
			metrics.ProtectedDeletes.Inc()
			problem.Protected(w, r, payments.ErrProtected, h.Env)
		case errors.Is(err, payments.ErrNotFound):
			problem.NotFound(w, r, err, h.Env)
		default:
			problem.ServerError(w, r, err, h.Env)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentsHandler) resolve(w http.ResponseWriter, r *http.Request, action policy.Action) (*payments.Payment, bool) {
	if h == nil || h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return nil, false
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return nil, false
	}

	payment, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			problem.NotFound(w, r, err, h.Env)
			return nil, false
		}
		problem.ServerError(w, r, err, h.Env)
		return nil, false
	}

	if !authorize(w, r, h.Rules, policy.ResourcePayments, action, payment, h.Env) {
		return nil, false
	}
	return payment, true
}

func writePaymentError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var fieldErr payments.FieldError
	switch {
	case errors.As(err, &fieldErr):
		problem.Validation(w, r, err, env, problem.WithFieldError(fieldErr.Field, fieldErr.Message))
	case errors.Is(err, payments.ErrNotFound):
		problem.NotFound(w, r, err, env)
	default:
		problem.ServerError(w, r, err, env)
	}
}
