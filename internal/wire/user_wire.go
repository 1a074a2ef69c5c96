package wire

import (
	"profile-auth/internal/adaptor"
	"profile-auth/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

// wireUser configures routes that require a bearer access token
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	gate *middleware.AuthGate,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(gate.Handler)

		r.Get("/api/profiles", userHandler.List)
		r.Post("/api/profiles", userHandler.Register)

		r.Put("/api/update-username", userHandler.UpdateUsername)
		r.Patch("/api/update-username", userHandler.UpdateUsername)

		r.Delete("/api/delete-user/{id}", userHandler.DeleteUser)
	})
}
