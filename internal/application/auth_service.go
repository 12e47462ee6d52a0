package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
)

// AttemptLimiter tracks failed logins per account. Implementations must be
// safe for concurrent use.
type AttemptLimiter interface {
	Locked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   entity.PublicUser
	Tokens helpers.TokenPair
}

type AuthOptions struct {
	EnableRegistration bool
	Limiter            AttemptLimiter // nil disables lock-out
}

type AuthService struct {
	Repo      repo.UserRepository
	JWT       *helpers.JWTManager
	Hasher    *helpers.PasswordHasher
	Publisher event.Publisher
	Logger    *logrus.Logger
	Opts      AuthOptions

	now       func() time.Time
	dummyOnce sync.Once
	dummy     string
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, pub event.Publisher, logger *logrus.Logger, opts AuthOptions) *AuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AuthService{
		Repo:      r,
		JWT:       jwt,
		Hasher:    hasher,
		Publisher: pub,
		Logger:    logger,
		Opts:      opts,
		now:       time.Now,
	}
}

// DefaultAvatarURL renders initials for users that never uploaded an avatar.
func DefaultAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=8b5cf6&color=fff"
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if !s.Opts.EnableRegistration {
		return nil, badRequest(MsgRegistrationClosed, nil)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, conflict(MsgEmailTaken)
	}
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		s.Logger.WithError(err).WithField("email", email).Error("registration lookup failed")
		return nil, badRequest(MsgRegistrationFailed, err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("password hash failed")
		return nil, badRequest(MsgRegistrationFailed, err)
	}

	u := &entity.User{
		Email:      email,
		Password:   hash,
		Name:       name,
		AvatarURL:  DefaultAvatarURL(name),
		Role:       entity.RoleBuyer,
		IsActive:   true,
		IsVerified: false,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// The pre-check above can lose a race; the storage layer has the final word.
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, conflict(MsgEmailTaken)
		}
		s.Logger.WithError(err).WithField("email", email).Error("create user failed")
		return nil, badRequest(MsgRegistrationFailed, err)
	}

	tokens, err := s.issue(ctx, u)
	if err != nil {
		return nil, badRequest(MsgRegistrationFailed, err)
	}
	s.emit(ctx, event.ForUser(event.UserRegistered, u, s.clock()))
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return &AuthResult{User: u.Public(), Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	lockKey := "login:" + email

	if s.Opts.Limiter != nil {
		locked, err := s.Opts.Limiter.Locked(ctx, lockKey)
		if err != nil {
			s.Logger.WithError(err).Warn("login limiter unavailable")
		}
		if locked {
			s.Logger.WithField("email", email).Warn("login attempt on locked account")
			return nil, unauthorized(MsgInvalidCredentials)
		}
	}

	u, err := s.ValidateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.recordFailure(ctx, lockKey)
		return nil, unauthorized(MsgInvalidCredentials)
	}
	if s.Opts.Limiter != nil {
		if err := s.Opts.Limiter.Reset(ctx, lockKey); err != nil {
			s.Logger.WithError(err).Warn("login limiter reset failed")
		}
	}

	at := s.clock().UTC()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, at); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("update last login failed")
	} else {
		u.LastLogin = &at
	}

	tokens, err := s.issue(ctx, u)
	if err != nil {
		return nil, unauthorized(MsgInvalidCredentials)
	}
	s.emit(ctx, event.ForUser(event.UserLoggedIn, u, at))
	return &AuthResult{User: u.Public(), Tokens: tokens}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.Opts.Limiter == nil {
		return
	}
	if err := s.Opts.Limiter.Fail(ctx, key); err != nil {
		s.Logger.WithError(err).Warn("login limiter record failed")
	}
}

// RefreshToken mints a new pair for the user named by a valid refresh token.
// Claims are rebuilt from the stored user so role changes take effect.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (helpers.TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(token)
	if err != nil {
		return helpers.TokenPair{}, unauthorized(MsgInvalidRefreshToken)
	}
	u, err := s.ValidateUserByID(ctx, claims.UserID())
	if err != nil || u == nil || !u.IsActive {
		return helpers.TokenPair{}, unauthorized(MsgInvalidRefreshToken)
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return helpers.TokenPair{}, unauthorized(MsgInvalidRefreshToken)
	}
	return pair, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) (string, error) {
	u, err := s.ValidateUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || !s.Hasher.Compare(u.Password, current) {
		return "", unauthorized(MsgCurrentPassword)
	}
	hash, err := s.Hasher.Hash(next)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("password hash failed")
		return "", badRequest("Password change failed", err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("update password failed")
		return "", badRequest("Password change failed", err)
	}
	s.emit(ctx, event.ForUser(event.UserPasswordChanged, u, s.clock()))
	return MsgPasswordChanged, nil
}

// ValidateUser returns the active user matching the credentials, or nil when
// the email is unknown, the account is inactive or the password is wrong.
func (s *AuthService) ValidateUser(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		// Keep timing close to the found-user path.
		s.Hasher.Compare(s.dummyHash(), password)
		return nil, nil
	}
	if err != nil {
		s.Logger.WithError(err).Error("credential lookup failed")
		return nil, unauthorized(MsgInvalidCredentials)
	}
	if !u.IsActive || !s.Hasher.Compare(u.Password, password) {
		return nil, nil
	}
	return u, nil
}

// ValidateUserByID returns nil, nil for unknown ids.
func (s *AuthService) ValidateUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Error("user lookup failed")
		return nil, unauthorized(MsgInvalidCredentials)
	}
	return u, nil
}

// Logout only announces the event. Issued tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) (string, error) {
	s.emit(ctx, event.Event{Name: event.UserLoggedOut, OccurredAt: s.clock().UTC(), UserID: userID})
	return MsgLoggedOut, nil
}

func (s *AuthService) issue(ctx context.Context, u *entity.User) (helpers.TokenPair, error) {
	pair, err := s.JWT.IssuePair(ctx, u.ID, u.Email, string(u.Role))
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue tokens failed")
		return helpers.TokenPair{}, err
	}
	return pair, nil
}

func (s *AuthService) emit(ctx context.Context, e event.Event) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, e); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"event": e.Name, "user_id": e.UserID}).Warn("publish event failed")
	}
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.Hasher.Hash(uuid.NewString())
	})
	return s.dummy
}
