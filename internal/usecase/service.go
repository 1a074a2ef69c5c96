package usecase

import (
	"profile-auth/internal/data/repository"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

// TokenIssuer is the part of the token service the use cases depend on.
type TokenIssuer interface {
	IssuePair(id security.Identity) (security.TokenPair, error)
	RefreshAccess(refreshToken string) (string, error)
}

type Service struct {
	Auth AuthService
	User UserService
}

func NewService(
	repo *repository.Repository,
	hasher security.PasswordHasher,
	tokens TokenIssuer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth: NewAuthService(repo.User, hasher, tokens, config.JWT, log),
		User: NewUserService(repo.User, hasher, config.Auth, log),
	}
}

func validationError(errs map[string]string) error {
	return apperror.ErrValidation.WithFields(errs)
}
