package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"profile-auth/internal/usecase"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// zero-valued so that field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ErrBadRequest.WithMessage("Invalid request body")
	}
	return nil
}

// handleServiceError maps typed errors to their status. Anything untyped is
// logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	requestID := utils.GetRequestIDFromContext(r.Context())

	appErr, ok := apperror.From(err)
	if !ok || appErr.Status >= http.StatusInternalServerError {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("request_id", requestID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.String("reason", appErr.Code),
		zap.String("request_id", requestID))

	if appErr.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}

	var fields any
	if len(appErr.Fields) > 0 {
		fields = appErr.Fields
	}
	utils.ResponseError(w, appErr.Status, appErr.Message, fields)
}
