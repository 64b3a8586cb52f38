package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/kimbia-events/server/internal/api/problem"
	"github.com/kimbia-events/server/internal/auth"
	"github.com/kimbia-events/server/internal/domain/users"
)

type contextKeyActor string

const actorKey contextKeyActor = "actor"

// Authenticator resolves a bearer token key to its user.
type Authenticator interface {
	AuthenticateToken(ctx context.Context, key string) (*users.User, error)
}

// TokenAuth requires a valid bearer token and stores the requester in the
// request context.
func TokenAuth(svc Authenticator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolveActor(r, svc)
			if err != nil {
				problem.Unauthorized(w, r, err, env)
				return
			}
			ctx := ContextWithActor(r.Context(), actor)
			ctx = WithRateLimitTier(ctx, TierAuthed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalTokenAuth resolves the requester when a token is presented but
// passes anonymous requests through. Registration uses it: anyone may
// register, but only an authenticated admin may register another admin.
func OptionalTokenAuth(svc Authenticator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolveActor(r, svc)
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					next.ServeHTTP(w, r)
					return
				}
				problem.Unauthorized(w, r, err, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

func resolveActor(r *http.Request, svc Authenticator) (*users.User, error) {
	key, err := auth.TokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, auth.ErrInvalidToken
	}
	return svc.AuthenticateToken(r.Context(), key)
}

func ContextWithActor(ctx context.Context, actor *users.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated requester, nil when anonymous.
func ActorFromContext(ctx context.Context) *users.User {
	if ctx == nil {
		return nil
	}
	if actor, ok := ctx.Value(actorKey).(*users.User); ok {
		return actor
	}
	return nil
}

// Actor is a convenience wrapper around ActorFromContext.
func Actor(r *http.Request) *users.User {
	if r == nil {
		return nil
	}
	return ActorFromContext(r.Context())
}
