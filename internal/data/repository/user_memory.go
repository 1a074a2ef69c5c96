package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"profile-auth/internal/data/entity"
	"profile-auth/pkg/apperror"

	"go.uber.org/zap"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*entity.User
	byEmail map[string]int64
	log     *zap.Logger
}

// NewMemoryUserRepository returns a process-local store with the same
// contract as the Postgres one, including case-insensitive email uniqueness.
func NewMemoryUserRepository(log *zap.Logger) UserRepository {
	return &memoryUserRepository{
		users:   make(map[int64]*entity.User),
		byEmail: make(map[string]int64),
		log:     log.With(zap.String("repository", "user_memory")),
	}
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("create user %s: %w", user.Email, apperror.ErrDuplicateEmail)
	}

	r.nextID++
	now := time.Now().UTC()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[key] = user.ID

	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("find user by ID %d: %w", id, apperror.ErrNotFound)
	}
	u := *user
	return &u, nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("find user by email %s: %w", email, apperror.ErrNotFound)
	}
	u := *r.users[id]
	return &u, nil
}

func (r *memoryUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*entity.User, 0, len(r.users))
	// ids are handed out sequentially and never reused
	for id := int64(1); id <= r.nextID; id++ {
		if user, ok := r.users[id]; ok {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (r *memoryUserRepository) UpdateUsername(ctx context.Context, id int64, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("update username of user %d: %w", id, apperror.ErrNotFound)
	}
	user.Username = username
	user.UpdatedAt = time.Now().UTC()

	u := *user
	return &u, nil
}

func (r *memoryUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update last login of user %d: %w", id, apperror.ErrNotFound)
	}
	at = at.UTC()
	user.LastLogin = &at
	return nil
}

func (r *memoryUserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("delete user %d: %w", id, apperror.ErrNotFound)
	}
	delete(r.byEmail, emailKey(user.Email))
	delete(r.users, id)

	r.log.Info("User deleted", zap.Int64("user_id", id))
	return nil
}
