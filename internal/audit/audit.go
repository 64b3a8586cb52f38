// Package audit records who changed what. Mutating requests on the API are
// written to a dedicated log stream so that payment validations, account
// deletions and similar actions can be traced back to an acting user.
package audit

import (
	"net/http"

	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/rs/zerolog"
)

type Trail struct {
	logger zerolog.Logger
}

func NewTrail(logger zerolog.Logger) *Trail {
	return &Trail{logger: logger.With().Str("component", "audit").Logger()}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

// Middleware records every mutating request together with the acting user.
// It must sit inside the authentication middleware, otherwise the actor is
// not yet in the request context. Reads pass through untouched.
func (t *Trail) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		event := t.logger.Info()
		if sw.status >= http.StatusBadRequest {
			event = t.logger.Warn()
		}
		event = event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Str("remote_addr", r.RemoteAddr)
		if actor := middleware.Actor(r); actor != nil {
			event = event.
				Str("actor_id", actor.ID.String()).
				Str("actor_username", actor.Username).
				Str("actor_role", string(actor.Role))
		}
		event.Msg("audit")
	})
}
