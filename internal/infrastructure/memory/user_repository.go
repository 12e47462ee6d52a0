package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

// UserRepository is a thread-safe in-memory credential store for tests and
// local runs without Postgres. The email index is checked and written under
// the same lock, so duplicate registrations fail atomically like the
// Postgres unique index.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// clone keeps callers from mutating stored records without going through the repo.
func clone(u *entity.User) *entity.User {
	cp := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return repository.ErrEmailTaken
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = clone(u)
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

// Update persists profile fields and status flags. Email, password and role
// have dedicated paths.
func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	return r.mutate(u.ID, func(stored *entity.User) {
		stored.Name = u.Name
		stored.AvatarURL = u.AvatarURL
		stored.IsActive = u.IsActive
		stored.IsVerified = u.IsVerified
		stored.UpdatedAt = time.Now().UTC()
		u.UpdatedAt = stored.UpdatedAt
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(stored *entity.User) {
		stored.Password = hash
		stored.UpdatedAt = time.Now().UTC()
	})
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role entity.Role) error {
	return r.mutate(id, func(stored *entity.User) {
		stored.Role = role
		stored.UpdatedAt = time.Now().UTC()
	})
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(stored *entity.User) {
		t := at.UTC()
		stored.LastLogin = &t
	})
}

func (r *UserRepository) mutate(id string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
