package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"profile-auth/internal/data/entity"
	"profile-auth/internal/data/repository"
	"profile-auth/internal/dto/request"
	"profile-auth/internal/dto/response"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	CreateSuperuser(ctx context.Context, req *request.SuperuserRequest) (*response.UserResponse, error)
	ListUsers(ctx context.Context) ([]response.UserResponse, error)
	UpdateUsername(ctx context.Context, actor *entity.User, req *request.UpdateUsernameRequest, partial bool) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actor *entity.User, id int64) (string, error)
}

type userService struct {
	userRepo              repository.UserRepository
	hasher                security.PasswordHasher
	deleteSelfOrAdminOnly bool
	log                   *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	authConfig utils.AuthConfig,
	log *zap.Logger,
) UserService {
	return &userService{
		userRepo:              userRepo,
		hasher:                hasher,
		deleteSelfOrAdminOnly: authConfig.DeleteSelfOrAdminOnly,
		log:                   log.With(zap.String("service", "user")),
	}
}

func (us *userService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Register validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
		return nil, validationError(errs)
	}

	user, err := us.createUser(ctx, req.Email, req.Username, req.Password, false, false)
	if err != nil {
		return nil, err
	}

	us.log.Info("User registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// CreateSuperuser forces both admin flags on. A flag explicitly set to false
// is rejected rather than corrected.
func (us *userService) CreateSuperuser(ctx context.Context, req *request.SuperuserRequest) (*response.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	if req.IsStaff != nil && !*req.IsStaff {
		return nil, apperror.ErrValidation.WithMessage("Superuser must have is_staff=True.")
	}
	if req.IsSuperuser != nil && !*req.IsSuperuser {
		return nil, apperror.ErrValidation.WithMessage("Superuser must have is_superuser=True.")
	}

	user, err := us.createUser(ctx, req.Email, req.Username, req.Password, true, true)
	if err != nil {
		return nil, err
	}

	us.log.Info("Superuser created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) createUser(ctx context.Context, email, username, password string, staff, superuser bool) (*entity.User, error) {
	hash, err := us.hasher.Hash(password)
	if err != nil {
		if appErr, ok := apperror.From(err); ok && errors.Is(err, apperror.ErrInvalidInput) {
			return nil, validationError(map[string]string{"password": appErr.Message})
		}
		us.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:        entity.NormalizeEmail(email),
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff,
		IsSuperuser:  superuser,
	}

	if err := us.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			us.log.Warn("Email already registered", zap.String("email", user.Email))
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return user, nil
}

func (us *userService) ListUsers(ctx context.Context) ([]response.UserResponse, error) {
	users, err := us.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	us.log.Debug("Users retrieved", zap.Int("count", len(users)))

	return response.UsersToResponse(users), nil
}

// UpdateUsername renames the acting user. The target is always actor, never
// an id taken from the request.
func (us *userService) UpdateUsername(ctx context.Context, actor *entity.User, req *request.UpdateUsernameRequest, partial bool) (*response.UserResponse, error) {
	if actor == nil {
		return nil, apperror.ErrMissingCredentials
	}

	if req.Username == nil {
		if !partial {
			return nil, validationError(map[string]string{"username": "This field is required"})
		}
		resp := response.UserToResponse(actor)
		return &resp, nil
	}

	username := strings.TrimSpace(*req.Username)
	req.Username = &username
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	user, err := us.userRepo.UpdateUsername(ctx, actor.ID, username)
	if err != nil {
		return nil, fmt.Errorf("update username: %w", err)
	}

	us.log.Info("Username updated", zap.Int64("user_id", user.ID))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteUser hard-deletes the user with the given id. Any authenticated actor
// may delete any user unless the self-or-admin restriction is configured.
func (us *userService) DeleteUser(ctx context.Context, actor *entity.User, id int64) (string, error) {
	if actor == nil {
		return "", apperror.ErrMissingCredentials
	}

	if us.deleteSelfOrAdminOnly && actor.ID != id && !actor.IsStaff && !actor.IsSuperuser {
		us.log.Warn("Delete denied",
			zap.Int64("actor_id", actor.ID),
			zap.Int64("target_id", id))
		return "", apperror.ErrForbidden
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete user: %w", err)
	}

	us.log.Info("User deleted", zap.Int64("user_id", id), zap.Int64("actor_id", actor.ID))

	return fmt.Sprintf("User with ID %d deleted successfully", id), nil
}
