package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profile-auth/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedUser is the Redis representation of a user. It has no password hash,
// so users served from cache carry none.
type cachedUser struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type cachedUserRepository struct {
	UserRepository
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewCachedUserRepository puts a read-through Redis cache in front of
// FindByID, which the auth middleware calls on every protected request.
// Writes go to inner first and then drop the cached entry.
func NewCachedUserRepository(inner UserRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) UserRepository {
	return &cachedUserRepository{
		UserRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		log:            log.With(zap.String("repository", "user_cache")),
	}
}

func userCacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// userGenKey counts writes to a user. A fill only lands when the count is
// unchanged since before the inner read.
func userGenKey(id int64) string {
	return fmt.Sprintf("user:%d:gen", id)
}

const userGenTTL = 24 * time.Hour

// KEYS[1] entry, KEYS[2] generation; ARGV[1] observed generation,
// ARGV[2] payload, ARGV[3] ttl in ms (0 = no expiry).
var fillIfUnchanged = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or ''
if gen ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[1], ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

func (r *cachedUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	raw, err := r.rdb.Get(ctx, userCacheKey(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(raw, &cu); err == nil {
			return cu.toEntity(), nil
		}
		r.log.Warn("Discarding unreadable cache entry", zap.Int64("user_id", id))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("User cache read failed", zap.Error(err), zap.Int64("user_id", id))
	}

	gen, genErr := r.rdb.Get(ctx, userGenKey(id)).Result()
	if errors.Is(genErr, redis.Nil) {
		gen, genErr = "", nil
	}

	user, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		r.log.Warn("User cache generation read failed", zap.Error(genErr), zap.Int64("user_id", id))
		return user, nil
	}

	payload, err := json.Marshal(newCachedUser(user))
	if err == nil {
		err = fillIfUnchanged.Run(ctx, r.rdb,
			[]string{userCacheKey(id), userGenKey(id)},
			gen, payload, r.ttl.Milliseconds(),
		).Err()
	}
	if err != nil {
		r.log.Warn("User cache write failed", zap.Error(err), zap.Int64("user_id", id))
	}

	return user, nil
}

func (r *cachedUserRepository) UpdateUsername(ctx context.Context, id int64, username string) (*entity.User, error) {
	user, err := r.UserRepository.UpdateUsername(ctx, id, username)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return user, nil
}

func (r *cachedUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if err := r.UserRepository.TouchLastLogin(ctx, id, at); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// invalidate bumps the generation before dropping the entry, so a fill that
// read the store before the write is refused.
func (r *cachedUserRepository) invalidate(ctx context.Context, id int64) {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, userGenKey(id))
		pipe.Expire(ctx, userGenKey(id), userGenTTL)
		pipe.Del(ctx, userCacheKey(id))
		return nil
	})
	if err != nil {
		r.log.Error("User cache invalidation failed", zap.Error(err), zap.Int64("user_id", id))
	}
}

func newCachedUser(u *entity.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (cu cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:          cu.ID,
		Email:       cu.Email,
		Username:    cu.Username,
		IsActive:    cu.IsActive,
		IsStaff:     cu.IsStaff,
		IsSuperuser: cu.IsSuperuser,
		LastLogin:   cu.LastLogin,
		CreatedAt:   cu.CreatedAt,
		UpdatedAt:   cu.UpdatedAt,
	}
}
