package usecase

import (
	"context"
	"testing"
	"time"

	"profile-auth/internal/data/repository"
	"profile-auth/internal/dto/request"
	"profile-auth/internal/dto/response"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, encoded string) (bool, error) {
	args := m.Called(password, encoded)
	return args.Bool(0), args.Error(1)
}

type serviceDeps struct {
	repo   *repository.Repository
	hasher security.PasswordHasher
	tokens *security.TokenService
	config *utils.Config
	svc    *Service
}

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{
			Algorithm:  "HS256",
			Secret:     "usecase-secret",
			AccessTTL:  5 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
	}
}

func setupService(t *testing.T, mutate ...func(*utils.Config)) *serviceDeps {
	t.Helper()

	config := testConfig()
	for _, m := range mutate {
		m(config)
	}

	log := zaptest.NewLogger(t)
	repo := repository.NewMemoryRepository(log)

	hasher, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:  security.AlgorithmBcrypt,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	tokens, err := security.NewTokenService(security.TokenConfig{
		Algorithm:  config.JWT.Algorithm,
		Secret:     []byte(config.JWT.Secret),
		AccessTTL:  config.JWT.AccessTTL,
		RefreshTTL: config.JWT.RefreshTTL,
	})
	require.NoError(t, err)

	return &serviceDeps{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		config: config,
		svc:    NewService(repo, hasher, tokens, config, log),
	}
}

func (d *serviceDeps) register(t *testing.T, email, username, password string) *response.UserResponse {
	t.Helper()

	user, err := d.svc.User.Register(context.Background(), &request.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return user
}
