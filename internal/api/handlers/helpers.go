package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/metrics"
	"github.com/kimbia-events/server/internal/policy"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return errors.New("empty request body")
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.PathValue(key))
	if raw == "" {
		return uuid.Nil, errors.New("missing " + key)
	}
	return uuid.Parse(raw)
}

// queryUUID parses an optional ?id= style filter. A missing parameter yields
// nil; a malformed one is a validation error.
func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &parsed, nil
}

// authorize runs the policy evaluator and writes the authorization failure
// when the request must not proceed. The object is nil for list/create.
func authorize(w http.ResponseWriter, r *http.Request, rules policy.Ruleset, resource policy.Resource, action policy.Action, object any, env string) bool {
	pctx := policy.Context{Actor: middleware.Actor(r), Object: object}
	err := rules.Authorize(pctx, resource, action)

	outcome := "allow"
	if err != nil {
		outcome = "deny"
	}
	metrics.AuthDecisions.WithLabelValues(string(resource), string(action), outcome).Inc()

	switch {
	case err == nil:
		return true
	case errors.Is(err, policy.ErrUnauthenticated):
		problem.Unauthorized(w, r, err, env)
		return false
	default:
		problem.Forbidden(w, r, err, env)
		return false
	}
}
