package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profile-auth/internal/data/entity"
	"profile-auth/internal/data/repository"
	"profile-auth/internal/dto/request"
	"profile-auth/internal/dto/response"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
	Login(ctx context.Context, req *request.LoginRequest) error
	ObtainTokenPair(ctx context.Context, req *request.LoginRequest) (*response.TokenPairResponse, error)
	RefreshToken(ctx context.Context, req *request.RefreshRequest) (*response.AccessTokenResponse, error)
}

type authService struct {
	userRepo        repository.UserRepository
	hasher          security.PasswordHasher
	tokens          TokenIssuer
	updateLastLogin bool
	now             func() time.Time
	log             *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	tokens TokenIssuer,
	jwtConfig utils.JWTConfig,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		hasher:          hasher,
		tokens:          tokens,
		updateLastLogin: jwtConfig.UpdateLastLogin,
		now:             time.Now,
		log:             log.With(zap.String("service", "auth")),
	}
}

// Authenticate checks an email/password pair. Unknown email, wrong password
// and inactive account all yield the same ErrInvalidCredentials.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		// keep the response time close to that of a known email
		_, _ = s.hasher.Hash(password)
		s.log.Warn("Login attempt for unknown email")
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error("Stored password hash is unusable", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("verify password of user %d: %w", user.ID, err)
	}
	if !ok {
		s.log.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.Int64("user_id", user.ID))
		return nil, apperror.ErrInvalidCredentials
	}

	return user, nil
}

// Login reports a missing email or password as bad credentials, not as a
// field error.
func (s *authService) Login(ctx context.Context, req *request.LoginRequest) error {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	s.log.Info("User authenticated", zap.Int64("user_id", user.ID))
	return nil
}

func (s *authService) ObtainTokenPair(ctx context.Context, req *request.LoginRequest) (*response.TokenPairResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(security.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		s.log.Error("Failed to issue token pair", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	if s.updateLastLogin {
		if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
			s.log.Warn("Failed to update last login", zap.Error(err), zap.Int64("user_id", user.ID))
		}
	}

	s.log.Info("Token pair issued", zap.Int64("user_id", user.ID))

	return &response.TokenPairResponse{
		Refresh:  pair.Refresh,
		Access:   pair.Access,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *request.RefreshRequest) (*response.AccessTokenResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	access, err := s.tokens.RefreshAccess(req.Refresh)
	if err != nil {
		return nil, err
	}

	return &response.AccessTokenResponse{Access: access}, nil
}
