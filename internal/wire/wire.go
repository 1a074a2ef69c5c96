package wire

import (
	"context"
	"net/http"
	"time"

	"profile-auth/internal/adaptor"
	"profile-auth/internal/data/repository"
	"profile-auth/internal/usecase"
	"profile-auth/pkg/middleware"
	"profile-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router and the services behind it.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Probe is a named dependency check run by /health.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Wiring builds services, handlers and routes from repo and config.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, probes ...Probe) (*App, error) {
	hasher, err := newPasswordHasher(config.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenService(config.JWT)
	if err != nil {
		return nil, err
	}

	service := usecase.NewService(repo, hasher, tokens, config, logger)
	handler := adaptor.NewHandler(service, logger)
	gate := middleware.NewAuthGate(tokens, repo.User, logger)

	router := setupRouter(handler, gate, logger, probes)

	return &App{
		Router:  router,
		Service: service,
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	gate *middleware.AuthGate,
	logger *zap.Logger,
	probes []Probe,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(chimw.StripSlashes)

	r.Get("/", handler.Auth.Home)
	r.Get("/health", healthHandler(probes, logger))

	wireAuth(r, handler.Auth, handler.User)
	wireUser(r, handler.User, gate)

	return r
}

func healthHandler(probes []Probe, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, p := range probes {
			if err := p.Check(ctx); err != nil {
				logger.Error("Health check failed", zap.String("dependency", p.Name), zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("UNAVAILABLE"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
