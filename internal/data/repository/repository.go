package repository

import (
	"time"

	"profile-auth/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	User UserRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User: NewUserRepository(db, log),
	}
}

// NewMemoryRepository backs every repository with process memory.
func NewMemoryRepository(log *zap.Logger) *Repository {
	return &Repository{
		User: NewMemoryUserRepository(log),
	}
}

// WithCache wraps the user repository in a Redis read-through cache.
func (r *Repository) WithCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Repository {
	return &Repository{
		User: NewCachedUserRepository(r.User, rdb, ttl, log),
	}
}
