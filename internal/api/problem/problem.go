// Package problem renders errors as RFC 7807 application/problem+json
// responses, one constructor per entry in the error taxonomy: validation,
// authorization, protected reference, not found.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const (
	TypeValidation   = "https://kimbia.events/problems/validation-error"
	TypeUnauthorized = "https://kimbia.events/problems/unauthorized"
	TypeForbidden    = "https://kimbia.events/problems/forbidden"
	TypeNotFound     = "https://kimbia.events/problems/not-found"
	TypeProtected    = "https://kimbia.events/problems/protected-reference"
	TypeServerError  = "https://kimbia.events/problems/server-error"
)

type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithFieldError(field, message string) Option {
	return func(p *ProblemDetails) {
		if p.Errors == nil {
			p.Errors = map[string]any{}
		}
		p.Errors[field] = message
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Validation answers a 400 with per-field detail.
func Validation(w http.ResponseWriter, r *http.Request, err error, env string, opts ...Option) {
	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env, opts...)
}

// Unauthorized answers a 401 for missing or bad credentials.
func Unauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusUnauthorized, TypeUnauthorized, "Unauthorized", err, env,
		WithDetail("Authentication required"))
}

// Forbidden answers a 403 with no detail beyond generic denial.
func Forbidden(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusForbidden, TypeForbidden, "Forbidden", err, env,
		WithDetail("You do not have permission to perform this action"))
}

// NotFound answers a 404.
func NotFound(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusNotFound, TypeNotFound, "Not found", err, env)
}

// Protected answers a 403 for deletes blocked by a protected reference,
// carrying a human-readable reason.
func Protected(w http.ResponseWriter, r *http.Request, err error, env string) {
	detail := "The resource is protected and cannot be removed"
	if err != nil {
		detail = err.Error()
	}
	Write(w, r, http.StatusForbidden, TypeProtected, "Protected", err, env, WithDetail(detail))
}

// ServerError answers a 500.
func ServerError(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	details := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&details)
	}

	if details.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			details.Detail = err.Error()
		} else {
			details.Detail = http.StatusText(status)
		}
	}

	if details.Instance == "" && r != nil {
		details.Instance = r.URL.Path
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, details)
}

func WriteProblem(w http.ResponseWriter, details ProblemDetails) {
	payload, err := json.Marshal(details)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(details.Status)
	_, _ = w.Write(payload)
}

