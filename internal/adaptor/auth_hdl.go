package adaptor

import (
	"net/http"

	"profile-auth/internal/dto/request"
	"profile-auth/internal/usecase"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Home handles GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Welcome to Django Auth API"))
}

// Login handles POST /api/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err, "login")
		return
	}

	if err := h.service.Login(r.Context(), &req); err != nil {
		handleServiceError(w, r, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", nil)
}

// ObtainToken handles POST /api/token/
func (h *AuthHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err, "obtain token")
		return
	}

	pair, err := h.service.ObtainTokenPair(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "obtain token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, pair)
}

// RefreshToken handles POST /api/token/refresh/
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err, "refresh token")
		return
	}

	access, err := h.service.RefreshToken(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "refresh token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, access)
}
