package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"profile-auth/internal/data/entity"
	"profile-auth/internal/data/repository"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*security.Claims, error)
}

// AuthGate turns a bearer access token into the user it was issued for.
type AuthGate struct {
	tokens AccessVerifier
	users  repository.UserRepository
	log    *zap.Logger
}

func NewAuthGate(tokens AccessVerifier, users repository.UserRepository, log *zap.Logger) *AuthGate {
	return &AuthGate{
		tokens: tokens,
		users:  users,
		log:    log.With(zap.String("middleware", "auth")),
	}
}

// Resolve authenticates a raw Authorization header value. The user must still
// exist and be active; a valid token for a deleted user is rejected.
func (g *AuthGate) Resolve(ctx context.Context, header string) (*entity.User, error) {
	token, err := bearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", claims.UserID, apperror.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", claims.UserID, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("user %d: %w", user.ID, apperror.ErrUserInactive)
	}

	return user, nil
}

// Handler rejects unauthenticated requests and exposes the resolved user to
// next through the request context only.
func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			g.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.SetUserContext(r.Context(), user)))
	})
}

func (g *AuthGate) reject(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.From(err)
	if !ok || appErr.Status >= http.StatusInternalServerError {
		g.log.Error("Authentication failed",
			zap.Error(err),
			zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	g.log.Warn("Authentication rejected",
		zap.String("reason", appErr.Code),
		zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
	)

	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	utils.ResponseError(w, appErr.Status, appErr.Message, nil)
}

func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperror.ErrMissingCredentials
	}
	return parts[1], nil
}
