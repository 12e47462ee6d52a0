package event

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

// Name identifies a domain event on the wire.
type Name string

const (
	UserRegistered      Name = "user.registered"
	UserLoggedIn        Name = "user.logged_in"
	UserPasswordChanged Name = "user.password_changed"
	UserLoggedOut       Name = "user.logged_out"
)

// Event is the payload published for every auth side effect.
// Consumers (mail, search indexing) must treat unknown names as no-ops.
type Event struct {
	Name       Name        `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	UserID     string      `json:"user_id"`
	Email      string      `json:"email,omitempty"`
	UserName   string      `json:"user_name,omitempty"`
	Role       entity.Role `json:"role,omitempty"`
	AvatarURL  string      `json:"avatar_url,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
}

// Publisher is the outbound port the auth service emits to.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// ForUser builds an event carrying the user's public identity.
func ForUser(name Name, u *entity.User, at time.Time) Event {
	e := Event{
		Name:       name,
		OccurredAt: at.UTC(),
		UserID:     u.ID,
		Email:      u.Email,
		UserName:   u.Name,
		Role:       u.Role,
		AvatarURL:  u.AvatarURL,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.UTC()
		e.CreatedAt = &created
	}
	return e
}
