package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

type seedUser struct {
	Email string
	Name  string
	Role  entity.Role
}

var seedUsers = []seedUser{
	{Email: "admin@marketplace.com", Name: "Super Admin", Role: entity.RoleSuperAdmin},
	{Email: "manager@marketplace.com", Name: "João Silva", Role: entity.RoleManager},
	{Email: "seller@marketplace.com", Name: "Maria Santos", Role: entity.RoleSeller},
	{Email: "buyer@marketplace.com", Name: "Pedro Costa", Role: entity.RoleBuyer},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "123456"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	for _, s := range seedUsers {
		log := logger.WithFields(logrus.Fields{"email": s.Email, "role": s.Role})
		id, err := ensureUser(ctx, users, s, hash)
		if err != nil {
			log.WithError(err).Fatal("failed to seed user")
		}
		log.WithField("user_id", id).Info("seeded user")
	}
}

// ensureUser creates s, or brings an existing account's role back in line.
func ensureUser(ctx context.Context, users repository.UserRepository, s seedUser, hash string) (string, error) {
	u := &entity.User{
		Email:      s.Email,
		Password:   hash,
		Name:       s.Name,
		AvatarURL:  application.DefaultAvatarURL(s.Name),
		Role:       s.Role,
		IsActive:   true,
		IsVerified: true,
	}
	err := users.Create(ctx, u)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, repository.ErrEmailTaken) {
		return "", err
	}
	existing, err := users.GetByEmail(ctx, s.Email)
	if err != nil {
		return "", err
	}
	if existing.Role != s.Role {
		if err := users.UpdateRole(ctx, existing.ID, s.Role); err != nil {
			return "", err
		}
	}
	return existing.ID, nil
}
