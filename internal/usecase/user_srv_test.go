package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"profile-auth/internal/data/entity"
	"profile-auth/internal/dto/request"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()

	user := d.register(t, "  Alice@Example.COM ", "alice", "s3cret-pass")
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)

	stored, err := d.repo.User.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	ok, err := d.hasher.Verify("s3cret-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_RegisterRejects(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()
	d.register(t, "taken@example.com", "first", "pw")

	testCases := []struct {
		name      string
		req       request.RegisterRequest
		wantErr   error
		wantField string
	}{
		{name: "duplicate email", req: request.RegisterRequest{Email: "taken@example.com", Username: "x", Password: "pw"}, wantErr: apperror.ErrDuplicateEmail},
		{name: "duplicate email other case", req: request.RegisterRequest{Email: "TAKEN@example.com", Username: "x", Password: "pw"}, wantErr: apperror.ErrDuplicateEmail},
		{name: "missing email", req: request.RegisterRequest{Username: "x", Password: "pw"}, wantErr: apperror.ErrValidation, wantField: "email"},
		{name: "malformed email", req: request.RegisterRequest{Email: "no-at-sign", Username: "x", Password: "pw"}, wantErr: apperror.ErrValidation, wantField: "email"},
		{name: "blank username", req: request.RegisterRequest{Email: "a@b.co", Username: "   ", Password: "pw"}, wantErr: apperror.ErrValidation, wantField: "username"},
		{name: "long username", req: request.RegisterRequest{Email: "a@b.co", Username: strings.Repeat("u", 101), Password: "pw"}, wantErr: apperror.ErrValidation, wantField: "username"},
		{name: "missing password", req: request.RegisterRequest{Email: "a@b.co", Username: "x"}, wantErr: apperror.ErrValidation, wantField: "password"},
		{name: "password too long for bcrypt", req: request.RegisterRequest{Email: "a@b.co", Username: "x", Password: strings.Repeat("p", 80)}, wantErr: apperror.ErrValidation, wantField: "password"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := d.svc.User.Register(ctx, &req)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantField != "" {
				appErr, ok := apperror.From(err)
				require.True(t, ok)
				assert.Contains(t, appErr.Fields, tc.wantField)
			}
		})
	}

	users, err := d.svc.User.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_HashFailure(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	d := setupService(t)
	hasher := new(MockHasher)
	hasher.On("Hash", "pw").Return("", errors.New("entropy exhausted"))

	svc := NewUserService(d.repo.User, hasher, utils.AuthConfig{}, log)
	_, err := svc.Register(context.Background(), &request.RegisterRequest{Email: "a@b.co", Username: "a", Password: "pw"})

	require.Error(t, err)
	assert.Equal(t, 500, apperror.StatusOf(err))
	hasher.AssertExpectations(t)
}

func TestUserService_CreateSuperuser(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()

	admin, err := d.svc.User.CreateSuperuser(ctx, &request.SuperuserRequest{
		Email: "root@example.com", Username: "root", Password: "pw",
	})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsActive)

	_, err = d.svc.User.CreateSuperuser(ctx, &request.SuperuserRequest{
		Email: "x@example.com", Username: "x", Password: "pw", IsStaff: boolPtr(false),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Superuser must have is_staff=True.", err.Error())

	_, err = d.svc.User.CreateSuperuser(ctx, &request.SuperuserRequest{
		Email: "y@example.com", Username: "y", Password: "pw", IsSuperuser: boolPtr(false),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Superuser must have is_superuser=True.", err.Error())

	_, err = d.svc.User.CreateSuperuser(ctx, &request.SuperuserRequest{
		Email: "z@example.com", Username: "z", Password: "pw", IsStaff: boolPtr(true), IsSuperuser: boolPtr(true),
	})
	assert.NoError(t, err)
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()

	users, err := d.svc.User.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	d.register(t, "a@example.com", "a", "pw")
	d.register(t, "b@example.com", "b", "pw")

	users, err = d.svc.User.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Username)
	assert.Equal(t, "b", users[1].Username)
}

func TestUserService_UpdateUsername(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()

	created := d.register(t, "g@example.com", "gina", "pw")
	actor, err := d.repo.User.FindByID(ctx, created.ID)
	require.NoError(t, err)

	updated, err := d.svc.User.UpdateUsername(ctx, actor, &request.UpdateUsernameRequest{Username: strPtr("  gigi ")}, false)
	require.NoError(t, err)
	assert.Equal(t, "gigi", updated.Username)
	assert.Equal(t, created.Email, updated.Email)

	same, err := d.svc.User.UpdateUsername(ctx, actor, &request.UpdateUsernameRequest{}, true)
	require.NoError(t, err)
	assert.Equal(t, actor.Username, same.Username)

	_, err = d.svc.User.UpdateUsername(ctx, actor, &request.UpdateUsernameRequest{}, false)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = d.svc.User.UpdateUsername(ctx, actor, &request.UpdateUsernameRequest{Username: strPtr(" ")}, true)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = d.svc.User.UpdateUsername(ctx, nil, &request.UpdateUsernameRequest{Username: strPtr("x")}, false)
	assert.ErrorIs(t, err, apperror.ErrMissingCredentials)

	gone := &entity.User{ID: 999}
	_, err = d.svc.User.UpdateUsername(ctx, gone, &request.UpdateUsernameRequest{Username: strPtr("x")}, false)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	d := setupService(t)
	ctx := context.Background()

	a := d.register(t, "a@example.com", "a", "pw")
	b := d.register(t, "b@example.com", "b", "pw")
	actor, err := d.repo.User.FindByID(ctx, a.ID)
	require.NoError(t, err)

	// any authenticated user may delete any account by default
	msg, err := d.svc.User.DeleteUser(ctx, actor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "User with ID 2 deleted successfully", msg)

	_, err = d.repo.User.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = d.svc.User.DeleteUser(ctx, actor, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = d.svc.User.DeleteUser(ctx, nil, a.ID)
	assert.ErrorIs(t, err, apperror.ErrMissingCredentials)
}

func TestUserService_DeleteUserSelfOrAdminOnly(t *testing.T) {
	t.Parallel()

	d := setupService(t, func(c *utils.Config) { c.Auth.DeleteSelfOrAdminOnly = true })
	ctx := context.Background()

	a := d.register(t, "a@example.com", "a", "pw")
	b := d.register(t, "b@example.com", "b", "pw")
	admin, err := d.svc.User.CreateSuperuser(ctx, &request.SuperuserRequest{Email: "root@example.com", Username: "root", Password: "pw"})
	require.NoError(t, err)

	actorA, err := d.repo.User.FindByID(ctx, a.ID)
	require.NoError(t, err)
	actorAdmin, err := d.repo.User.FindByID(ctx, admin.ID)
	require.NoError(t, err)

	_, err = d.svc.User.DeleteUser(ctx, actorA, b.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = d.svc.User.DeleteUser(ctx, actorAdmin, b.ID)
	assert.NoError(t, err)

	_, err = d.svc.User.DeleteUser(ctx, actorA, a.ID)
	assert.NoError(t, err)
}

func TestUserService_HasherInputErrorBecomesFieldError(t *testing.T) {
	t.Parallel()

	hasher := new(MockHasher)
	hasher.On("Hash", mock.Anything).Return("", apperror.ErrInvalidInput.WithMessage("password must not be empty"))

	d := setupService(t)
	svc := NewUserService(d.repo.User, hasher, utils.AuthConfig{}, zaptest.NewLogger(t))

	_, err := svc.Register(context.Background(), &request.RegisterRequest{Email: "a@b.co", Username: "a", Password: "pw"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	appErr, ok := apperror.From(err)
	require.True(t, ok)
	assert.Equal(t, "password must not be empty", appErr.Fields["password"])
}
