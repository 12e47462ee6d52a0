package router

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/internal/router/modules"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

type moduleDeps struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Health *handlers.HealthHandler
	Access modules.Access
}

func buildUserRepository(logger *logrus.Logger) repo.UserRepository {
	if pool := container.GetPGPool(); pool != nil {
		return pginfra.NewUserRepository(pool)
	}
	logger.Warn("no postgres pool configured, users are kept in memory")
	return memory.NewUserRepository()
}

func buildPublisher(logger *logrus.Logger) event.Publisher {
	fan := messaging.Fanout{messaging.NewLogPublisher(logger), messaging.CounterPublisher{}}
	if rp := container.GetRabbitPub(); rp != nil {
		fan = append(fan, messaging.NewBrokerPublisher(rp))
	}
	return fan
}

func buildDeps(cfg *config.Config, policy *middleware.Policy) moduleDeps {
	logger := container.GetLogger()
	jwt := container.GetJWT()
	users := buildUserRepository(logger)
	matrix := authz.DefaultMatrix()

	opts := application.AuthOptions{EnableRegistration: cfg.EnableRegistration}
	if rdb := container.GetRedis(); rdb != nil {
		opts.Limiter = cache.NewLoginLimiter(rdb, cfg.MaxLoginAttempts, cfg.LockoutTime)
	}
	authSvc := application.NewAuthService(
		users,
		jwt,
		helpers.NewPasswordHasher(cfg.BcryptCost),
		buildPublisher(logger),
		logger,
		opts,
	)

	var store application.ObjectStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		store = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}
	var dir application.UserDirectory
	if idx := search.NewUserIndex(container.GetES(), cfg.ESUsersIndex); idx.Enabled() {
		dir = idx
	}
	userSvc := application.NewUserService(users, matrix, store, dir, logger, cfg.UploadMaxFileSize)

	return moduleDeps{
		Auth:   handlers.NewAuthHandler(authSvc, logger),
		User:   handlers.NewUserHandler(userSvc, logger),
		Health: handlers.NewHealthHandler(cfg.Env),
		Access: modules.Access{JWT: jwt, Matrix: matrix, Policy: policy},
	}
}

// InitModules builds services from the container and registers every module.
// Call once at startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	if cfg == nil {
		cfg = config.Load()
		container.SetConfig(cfg)
	}
	deps := buildDeps(cfg, r.Policy)

	r.Add(modules.NewHealthModule(deps.Health))
	r.Add(modules.NewAuthModule(deps.Auth, deps.Access))
	r.Add(modules.NewUserModule(deps.User, deps.Access, cfg.UploadMaxFileSize))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(deps.Access))
	}
}
