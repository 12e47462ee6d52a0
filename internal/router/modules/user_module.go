package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// multipart framing on top of the file itself
const multipartOverhead = 1 << 20

type UserModule struct {
	Handler       *handlers.UserHandler
	Access        Access
	MaxAvatarSize int64
}

func NewUserModule(h *handlers.UserHandler, access Access, maxAvatarSize int64) *UserModule {
	return &UserModule{Handler: h, Access: access, MaxAvatarSize: maxAvatarSize}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := m.Access.Protected(rg.Group("/users"))
	policy := m.Access.Policy
	{
		users.GET("/me", m.Handler.Me)
		users.GET("/me/permissions", m.Handler.Permissions)
		users.PUT("/me/avatar", middleware.MaxBodyBytes(m.MaxAvatarSize+multipartOverhead), m.Handler.UploadAvatar)
		users.GET(policy.Guard(users, http.MethodGet, "/search", authz.SuperAdminOnly().With(authz.CapUserManage)), m.Handler.Search)
	}
}
