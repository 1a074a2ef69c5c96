package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profile-auth/internal/data/entity"
	"profile-auth/internal/data/repository"
	"profile-auth/pkg/apperror"
	"profile-auth/pkg/security"
	"profile-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type gateFixture struct {
	gate   *AuthGate
	tokens *security.TokenService
	users  repository.UserRepository
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	log := zaptest.NewLogger(t)
	tokens, err := security.NewTokenService(security.TokenConfig{
		Algorithm:  "HS256",
		Secret:     []byte("gate-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository(log)
	return &gateFixture{
		gate:   NewAuthGate(tokens, users, log),
		tokens: tokens,
		users:  users,
	}
}

func (f *gateFixture) createUser(t *testing.T, email string, active bool) (*entity.User, security.TokenPair) {
	t.Helper()

	user := &entity.User{Email: email, Username: "u", PasswordHash: "h", IsActive: active}
	require.NoError(t, f.users.Create(context.Background(), user))

	pair, err := f.tokens.IssuePair(security.Identity{UserID: user.ID, Email: user.Email, Username: user.Username})
	require.NoError(t, err)
	return user, pair
}

func TestAuthGate_Resolve(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	active, activePair := f.createUser(t, "active@example.com", true)
	_, inactivePair := f.createUser(t, "inactive@example.com", false)
	deleted, deletedPair := f.createUser(t, "deleted@example.com", true)
	require.NoError(t, f.users.Delete(context.Background(), deleted.ID))

	testCases := []struct {
		name    string
		header  string
		wantID  int64
		wantErr error
	}{
		{name: "valid", header: "Bearer " + activePair.Access, wantID: active.ID},
		{name: "scheme is case-insensitive", header: "bearer " + activePair.Access, wantID: active.ID},
		{name: "missing header", header: "", wantErr: apperror.ErrMissingCredentials},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: apperror.ErrMissingCredentials},
		{name: "extra parts", header: "Bearer a b", wantErr: apperror.ErrMissingCredentials},
		{name: "refresh token", header: "Bearer " + activePair.Refresh, wantErr: apperror.ErrWrongTokenType},
		{name: "garbage token", header: "Bearer nope", wantErr: apperror.ErrInvalidToken},
		{name: "inactive user", header: "Bearer " + inactivePair.Access, wantErr: apperror.ErrUserInactive},
		{name: "deleted user", header: "Bearer " + deletedPair.Access, wantErr: apperror.ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, err := f.gate.Resolve(context.Background(), tc.header)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, user.ID)
		})
	}
}

func TestAuthGate_Handler(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	user, pair := f.createUser(t, "handler@example.com", true)

	var seen *entity.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := f.gate.Handler(next)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("rejected", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, seen)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

		var body utils.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Status)
		assert.Equal(t, apperror.ErrMissingCredentials.Message, body.Message)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var got string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = utils.GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, got, 36)
	assert.Equal(t, got, rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	h := Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
