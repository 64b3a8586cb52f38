package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kimbia-events/server/internal/api/handlers"
	"github.com/kimbia-events/server/internal/api/middleware"
	"github.com/kimbia-events/server/internal/audit"
	"github.com/kimbia-events/server/internal/config"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/domain/payments"
	"github.com/kimbia-events/server/internal/domain/sponsors"
	"github.com/kimbia-events/server/internal/domain/users"
	"github.com/kimbia-events/server/internal/metrics"
	"github.com/kimbia-events/server/internal/policy"
	"github.com/kimbia-events/server/internal/storage/postgres"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the full HTTP surface: auth, the five resource route
// groups, health probes, and the metrics endpoint. The caller owns the pool.
func NewRouter(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) http.Handler {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		logger.Error().Err(err).Msg("repository init failed")
		return http.NewServeMux()
	}

	usersService := users.NewService(repo.Users(), repo.Tokens(), cfg.Auth.TokenLength, cfg.Auth.BcryptCost, logger)
	marathonsService := marathons.NewService(repo.Marathons())
	categoriesService := categories.NewService(repo.Categories(), repo.Marathons())
	sponsorsService := sponsors.NewService(repo.Sponsors(), repo.Marathons())
	paymentsService := payments.NewService(repo.Payments(), repo.Categories(), logger)

	rules := policy.DefaultRuleset
	env := cfg.Environment

	authHandler := handlers.NewAuthHandler(usersService, env)
	usersHandler := handlers.NewUsersHandler(usersService, rules, env)
	marathonsHandler := handlers.NewMarathonsHandler(marathonsService, rules, env)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesService, rules, env)
	sponsorsHandler := handlers.NewSponsorsHandler(sponsorsService, rules, env)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsService, rules, env)

	requireAuth := middleware.TokenAuth(usersService, env)
	optionalAuth := middleware.OptionalTokenAuth(usersService, env)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	// The limiter reads the tier from the request context, so it must sit
	// inside whatever sets the tier: loginTier for the auth routes, TokenAuth
	// for everything behind authentication.
	limit := middleware.RateLimit(cfg.RateLimit)

	// Mutating requests behind authentication leave an audit record naming
	// the acting user. Sits inside TokenAuth so the actor is resolved.
	trail := audit.NewTrail(logger).Middleware

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.NewHealthChecker(pool, Version).Readyz())
	mux.Handle("/metrics", limit(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	mux.Handle("/version", limit(VersionHandler()))

	mux.Handle("/api/v1/auth/login", metrics.Instrument("/api/v1/auth/login",
		loginTier(limit(methodMux(map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(authHandler.Login),
		})))))
	mux.Handle("/api/v1/auth/register", metrics.Instrument("/api/v1/auth/register",
		loginTier(limit(optionalAuth(methodMux(map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(authHandler.Register),
		}))))))

	resource := func(pattern string, collection, item map[string]http.Handler) {
		mux.Handle(pattern, metrics.Instrument(pattern, requireAuth(trail(limit(methodMux(collection))))))
		itemPattern := pattern + "/{id}"
		mux.Handle(itemPattern, metrics.Instrument(itemPattern, requireAuth(trail(limit(methodMux(item))))))
	}

	resource("/api/v1/users",
		map[string]http.Handler{
			http.MethodGet: http.HandlerFunc(usersHandler.List),
		},
		map[string]http.Handler{
			http.MethodGet:    http.HandlerFunc(usersHandler.Get),
			http.MethodPut:    http.HandlerFunc(usersHandler.Update),
			http.MethodPatch:  http.HandlerFunc(usersHandler.Update),
			http.MethodDelete: http.HandlerFunc(usersHandler.Delete),
		})

	resource("/api/v1/marathons",
		map[string]http.Handler{
			http.MethodGet:  http.HandlerFunc(marathonsHandler.List),
			http.MethodPost: http.HandlerFunc(marathonsHandler.Create),
		},
		map[string]http.Handler{
			http.MethodGet:    http.HandlerFunc(marathonsHandler.Get),
			http.MethodPut:    http.HandlerFunc(marathonsHandler.Update),
			http.MethodPatch:  http.HandlerFunc(marathonsHandler.Update),
			http.MethodDelete: http.HandlerFunc(marathonsHandler.Delete),
		})

	resource("/api/v1/categories",
		map[string]http.Handler{
			http.MethodGet:  http.HandlerFunc(categoriesHandler.List),
			http.MethodPost: http.HandlerFunc(categoriesHandler.Create),
		},
		map[string]http.Handler{
			http.MethodGet:    http.HandlerFunc(categoriesHandler.Get),
			http.MethodPut:    http.HandlerFunc(categoriesHandler.Update),
			http.MethodPatch:  http.HandlerFunc(categoriesHandler.Update),
			http.MethodDelete: http.HandlerFunc(categoriesHandler.Delete),
		})

	resource("/api/v1/sponsors",
		map[string]http.Handler{
			http.MethodGet:  http.HandlerFunc(sponsorsHandler.List),
			http.MethodPost: http.HandlerFunc(sponsorsHandler.Create),
		},
		map[string]http.Handler{
			http.MethodGet:    http.HandlerFunc(sponsorsHandler.Get),
			http.MethodPut:    http.HandlerFunc(sponsorsHandler.Update),
			http.MethodPatch:  http.HandlerFunc(sponsorsHandler.Update),
			http.MethodDelete: http.HandlerFunc(sponsorsHandler.Delete),
		})

	resource("/api/v1/payments",
		map[string]http.Handler{
			http.MethodGet:  http.HandlerFunc(paymentsHandler.List),
			http.MethodPost: http.HandlerFunc(paymentsHandler.Create),
		},
		map[string]http.Handler{
			http.MethodGet:    http.HandlerFunc(paymentsHandler.Get),
			http.MethodPut:    http.HandlerFunc(paymentsHandler.Update),
			http.MethodPatch:  http.HandlerFunc(paymentsHandler.Update),
			http.MethodDelete: http.HandlerFunc(paymentsHandler.Delete),
		})

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
