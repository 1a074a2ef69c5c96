package wire

import (
	"profile-auth/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	userHandler *adaptor.UserHandler,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/register", userHandler.List)
	r.Post("/api/register", userHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/token", authHandler.ObtainToken)
	r.Post("/api/token/refresh", authHandler.RefreshToken)
}
