package application

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-marketplace/internal/domain/repository"
)

// ObjectStore is satisfied by helpers.GCSUploader.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// UserDirectory is satisfied by search.UserIndex.
type UserDirectory interface {
	Put(ctx context.Context, doc entity.UserDocument) error
	Search(ctx context.Context, q string, size int) ([]entity.UserDocument, error)
}

var avatarExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const MsgUserNotFound = "User not found"

type UserService struct {
	Repo          repo.UserRepository
	Matrix        authz.Matrix
	Store         ObjectStore
	Directory     UserDirectory
	Logger        *logrus.Logger
	MaxAvatarSize int64
}

func NewUserService(r repo.UserRepository, matrix authz.Matrix, store ObjectStore, dir UserDirectory, logger *logrus.Logger, maxAvatarSize int64) *UserService {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserService{Repo: r, Matrix: matrix, Store: store, Directory: dir, Logger: logger, MaxAvatarSize: maxAvatarSize}
}

func (s *UserService) Profile(ctx context.Context, userID string) (entity.PublicUser, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return entity.PublicUser{}, notFound(MsgUserNotFound)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("load profile failed")
		return entity.PublicUser{}, badRequest("Could not load profile", err)
	}
	return u.Public(), nil
}

// PermissionsView is what the storefront needs to decide which screens to show.
type PermissionsView struct {
	Role         entity.Role        `json:"role"`
	Level        int                `json:"level"`
	Capabilities []authz.Capability `json:"capabilities"`
	Access       map[string]bool    `json:"access"`
}

// Permissions describes what role may do. Access answers the coarse
// dashboard checks (seller, manager, admin areas).
func (s *UserService) Permissions(role entity.Role) PermissionsView {
	return PermissionsView{
		Role:         role,
		Level:        role.Level(),
		Capabilities: s.Matrix.Capabilities(role),
		Access: map[string]bool{
			"seller":  s.Matrix.Allows(role, authz.SellerOnly()),
			"manager": s.Matrix.Allows(role, authz.ManagerOnly()),
			"admin":   s.Matrix.Allows(role, authz.SuperAdminOnly()),
		},
	}
}

// UploadAvatar stores the image and points the user's avatar at it.
// size is the declared upload size in bytes.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (entity.PublicUser, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := avatarExt[contentType]
	if !ok {
		return entity.PublicUser{}, badRequest("Only JPEG, PNG and WebP images are allowed", nil)
	}
	if s.MaxAvatarSize > 0 && size > s.MaxAvatarSize {
		return entity.PublicUser{}, badRequest("File too large", nil)
	}
	if s.Store == nil {
		return entity.PublicUser{}, badRequest("Uploads are not available", nil)
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return entity.PublicUser{}, notFound(MsgUserNotFound)
	}
	if err != nil {
		return entity.PublicUser{}, badRequest("Upload failed", err)
	}

	if s.MaxAvatarSize > 0 {
		// Guard against a lying Content-Length.
		r = io.LimitReader(r, s.MaxAvatarSize)
	}
	objectPath := path.Join("avatars", u.ID, uuid.NewString()+ext)
	url, err := s.Store.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar upload failed")
		return entity.PublicUser{}, badRequest("Upload failed", err)
	}

	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar update failed")
		return entity.PublicUser{}, badRequest("Upload failed", err)
	}
	s.reindex(ctx, u)
	return u.Public(), nil
}

func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.UserDocument, error) {
	if s.Directory == nil {
		return []entity.UserDocument{}, nil
	}
	docs, err := s.Directory.Search(ctx, strings.TrimSpace(q), size)
	if err != nil {
		s.Logger.WithError(err).Warn("user search failed")
		return nil, badRequest("Search unavailable", err)
	}
	return docs, nil
}

func (s *UserService) reindex(ctx context.Context, u *entity.User) {
	if s.Directory == nil {
		return
	}
	if err := s.Directory.Put(ctx, u.Document()); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}
