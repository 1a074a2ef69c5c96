package adaptor

import (
	"net/http"
	"strconv"

	"profile-auth/internal/dto/request"
	"profile-auth/internal/usecase"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /api/register/ and POST /api/profiles/
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err, "register")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "register")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

// List handles GET /api/register/ and GET /api/profiles/
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "list users")
		return
	}

	utils.WriteJSON(w, http.StatusOK, users)
}

// UpdateUsername handles PUT and PATCH /api/update-username/
func (h *UserHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		handleServiceError(w, r, h.log, apperror.ErrMissingCredentials, "update username")
		return
	}

	var req request.UpdateUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err, "update username")
		return
	}

	partial := r.Method == http.MethodPatch
	user, err := h.service.UpdateUsername(r.Context(), actor, &req, partial)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update username")
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/delete-user/{id}/
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		handleServiceError(w, r, h.log, apperror.ErrMissingCredentials, "delete user")
		return
	}

	// a non-numeric id never matches a route
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		handleServiceError(w, r, h.log, apperror.ErrNotFound, "delete user")
		return
	}

	message, err := h.service.DeleteUser(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, r, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, message, nil)
}
