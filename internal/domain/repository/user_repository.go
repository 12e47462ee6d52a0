package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the storage layer rejects a
	// duplicate email, including when two registrations race.
	ErrEmailTaken = errors.New("email already in use")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
